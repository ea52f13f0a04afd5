package utils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	App    AppConfig    `yaml:"app"`
	Auth   AuthConfig   `yaml:"auth"`
	Reddit RedditConfig `yaml:"reddit"`
	Server ServerConfig `yaml:"server"`
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	LogLevel string `yaml:"logLevel"`
}

// AuthConfig holds the credentials callers must present
type AuthConfig struct {
	APIKey       string `yaml:"apiKey"`
	DocsUsername string `yaml:"docsUsername"`
	DocsPassword string `yaml:"docsPassword"`
}

// RedditConfig holds upstream Reddit API settings.
// App credentials are not configured here; every caller sends their own.
type RedditConfig struct {
	DefaultUserAgent string        `yaml:"defaultUserAgent"`
	BaseURL          string        `yaml:"baseURL"`
	AuthURL          string        `yaml:"authURL"`
	RequestTimeout   time.Duration `yaml:"requestTimeout"`
}

// UnmarshalYAML reads requestTimeout with parseDuration so that both
// "2500ms" and a bare number of seconds are accepted.
func (c *RedditConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain RedditConfig
	out := plain(*c)

	if value.Kind != yaml.MappingNode {
		return value.Decode(&out)
	}

	rest := *value
	rest.Content = nil
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if key.Value != "requestTimeout" {
			rest.Content = append(rest.Content, key, val)
			continue
		}
		timeout, err := parseDuration(val.Value)
		if err != nil {
			return fmt.Errorf("invalid reddit.requestTimeout %q: %w", val.Value, err)
		}
		out.RequestTimeout = timeout
	}

	if err := rest.Decode(&out); err != nil {
		return err
	}
	*c = RedditConfig(out)
	return nil
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port                 int `yaml:"port"`
	MaxRequestsPerMinute int `yaml:"maxRequestsPerMinute"` // per client IP
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		App: AppConfig{
			Name:     "Reddit API Wrapper",
			Version:  "1.0.0",
			LogLevel: "info",
		},
		Auth: AuthConfig{
			DocsUsername: "admin",
			DocsPassword: "password",
		},
		Reddit: RedditConfig{
			DefaultUserAgent: "RedditAPIWrapper/1.0",
			BaseURL:          "https://oauth.reddit.com",
			AuthURL:          "https://www.reddit.com/api/v1/access_token",
			RequestTimeout:   10 * time.Second,
		},
		Server: ServerConfig{
			Port:                 8000,
			MaxRequestsPerMinute: 100,
		},
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file, an
// optional .env file and the process environment, in increasing precedence
func LoadConfig(envPath, yamlPath string, log *logrus.Logger) (*Config, error) {
	config := Default()

	if yamlPath != "" {
		if err := loadYAML(yamlPath, &config); err != nil {
			return nil, err
		}
		log.WithField("file", yamlPath).Info("YAML config loaded")
	}

	if envPath == "" {
		envPath = ".env"
	}

	// a missing .env is fine, the real environment may carry everything
	if err := godotenv.Load(envPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
		log.WithField("file", envPath).Warn("No .env file found, using environment only")
	}

	applyEnv(&config)

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	log.WithField("file", envPath).Info("Config loaded successfully")
	return &config, nil
}

func loadYAML(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides config values with any environment variables that are set
func applyEnv(config *Config) {
	config.App.Name = getEnv("APP_NAME", config.App.Name)
	config.App.Version = getEnv("APP_VERSION", config.App.Version)
	config.App.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", config.App.LogLevel))

	config.Auth.APIKey = getEnv("API_KEY", config.Auth.APIKey)
	config.Auth.DocsUsername = getEnv("DOCS_USERNAME", config.Auth.DocsUsername)
	config.Auth.DocsPassword = getEnv("DOCS_PASSWORD", config.Auth.DocsPassword)

	config.Reddit.DefaultUserAgent = getEnv("REDDIT_DEFAULT_USER_AGENT", config.Reddit.DefaultUserAgent)
	config.Reddit.BaseURL = getEnv("REDDIT_BASE_URL", config.Reddit.BaseURL)
	config.Reddit.AuthURL = getEnv("REDDIT_AUTH_URL", config.Reddit.AuthURL)
	config.Reddit.RequestTimeout = getEnvAsDuration("REDDIT_REQUEST_TIMEOUT", config.Reddit.RequestTimeout)

	config.Server.Port = getEnvAsInt("SERVER_PORT", config.Server.Port)
	config.Server.MaxRequestsPerMinute = getEnvAsInt("MAX_REQUESTS_PER_MINUTE", config.Server.MaxRequestsPerMinute)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as a duration or returns a default value.
// A bare integer is read as seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := parseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// parseDuration accepts Go duration strings ("2500ms", "1m") or whole seconds ("10")
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if seconds, err := strconv.Atoi(s); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	// every data endpoint is behind the API key, running without one would leave them open
	if config.Auth.APIKey == "" {
		return fmt.Errorf("API_KEY environment variable is required")
	}
	if config.Auth.DocsUsername == "" || config.Auth.DocsPassword == "" {
		return fmt.Errorf("DOCS_USERNAME and DOCS_PASSWORD must not be empty")
	}
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}
	if config.Server.MaxRequestsPerMinute < 1 {
		return fmt.Errorf("MAX_REQUESTS_PER_MINUTE must be positive")
	}
	if config.Reddit.RequestTimeout <= 0 {
		return fmt.Errorf("REDDIT_REQUEST_TIMEOUT must be positive")
	}
	if config.Reddit.DefaultUserAgent == "" {
		return fmt.Errorf("REDDIT_DEFAULT_USER_AGENT must not be empty")
	}

	return nil
}
