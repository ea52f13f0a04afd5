package utils

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_ENV_VAR", "test-value")

	value := getEnv("TEST_ENV_VAR", "default-value")
	assert.Equal(t, "test-value", value)

	value = getEnv("NON_EXISTENT_VAR", "default-value")
	assert.Equal(t, "default-value", value)
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT_VAR", "42")
	t.Setenv("TEST_INVALID_INT_VAR", "not-an-int")

	assert.Equal(t, 42, getEnvAsInt("TEST_INT_VAR", 10))
	assert.Equal(t, 10, getEnvAsInt("TEST_INVALID_INT_VAR", 10))
	assert.Equal(t, 10, getEnvAsInt("NON_EXISTENT_VAR", 10))
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{"Unset keeps default", "", 1500 * time.Millisecond},
		{"Whole seconds", "2", 2 * time.Second},
		{"Duration string", "1500ms", 1500 * time.Millisecond},
		{"Minutes", "1m", time.Minute},
		{"Invalid keeps default", "soon", 1500 * time.Millisecond},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION_VAR", tc.value)
			assert.Equal(t, tc.expected, getEnvAsDuration("TEST_DURATION_VAR", 1500*time.Millisecond))
		})
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		config := Default()
		config.Auth.APIKey = "key"
		return &config
	}

	assert.NoError(t, validateConfig(valid()))

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "Missing API key",
			mutate: func(c *Config) { c.Auth.APIKey = "" },
			errMsg: "API_KEY",
		},
		{
			name:   "Empty docs password",
			mutate: func(c *Config) { c.Auth.DocsPassword = "" },
			errMsg: "DOCS_USERNAME and DOCS_PASSWORD",
		},
		{
			name:   "Port out of range",
			mutate: func(c *Config) { c.Server.Port = 70000 },
			errMsg: "SERVER_PORT",
		},
		{
			name:   "Zero rate limit",
			mutate: func(c *Config) { c.Server.MaxRequestsPerMinute = 0 },
			errMsg: "MAX_REQUESTS_PER_MINUTE",
		},
		{
			name:   "Negative timeout",
			mutate: func(c *Config) { c.Reddit.RequestTimeout = -time.Second },
			errMsg: "REDDIT_REQUEST_TIMEOUT",
		},
		{
			name:   "Empty user agent",
			mutate: func(c *Config) { c.Reddit.DefaultUserAgent = "" },
			errMsg: "REDDIT_DEFAULT_USER_AGENT",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := valid()
			tc.mutate(config)

			err := validateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("API_KEY=from-env-file\nSERVER_PORT=9100\nREDDIT_REQUEST_TIMEOUT=3\n"), 0o600))

	// godotenv.Load sets process variables; register them so they are cleared afterwards
	t.Setenv("API_KEY", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("REDDIT_REQUEST_TIMEOUT", "")
	os.Unsetenv("API_KEY")
	os.Unsetenv("SERVER_PORT")
	os.Unsetenv("REDDIT_REQUEST_TIMEOUT")

	config, err := LoadConfig(envPath, "", testLogger())
	require.NoError(t, err)

	assert.Equal(t, "from-env-file", config.Auth.APIKey)
	assert.Equal(t, 9100, config.Server.Port)
	assert.Equal(t, 3*time.Second, config.Reddit.RequestTimeout)
	assert.Equal(t, 100, config.Server.MaxRequestsPerMinute)
	assert.Equal(t, "RedditAPIWrapper/1.0", config.Reddit.DefaultUserAgent)
}

func TestLoadConfigMissingEnvFile(t *testing.T) {
	t.Setenv("API_KEY", "from-process")

	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"), "", testLogger())
	require.NoError(t, err)
	assert.Equal(t, "from-process", config.Auth.APIKey)
}

func TestLoadConfigYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
app:
  name: Insights
auth:
  apiKey: yaml-key
  docsUsername: ops
server:
  port: 8088
  maxRequestsPerMinute: 30
`), 0o600))

	t.Setenv("API_KEY", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("MAX_REQUESTS_PER_MINUTE", "45")

	config, err := LoadConfig(filepath.Join(dir, "missing.env"), yamlPath, testLogger())
	require.NoError(t, err)

	assert.Equal(t, "Insights", config.App.Name)
	assert.Equal(t, "yaml-key", config.Auth.APIKey)
	assert.Equal(t, "ops", config.Auth.DocsUsername)
	assert.Equal(t, "password", config.Auth.DocsPassword)
	assert.Equal(t, 8088, config.Server.Port)
	// the environment wins over the file
	assert.Equal(t, 45, config.Server.MaxRequestsPerMinute)
}

func TestLoadConfigRequestTimeout(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		env      string
		expected time.Duration
	}{
		{"Sub-second YAML value", "2500ms", "", 2500 * time.Millisecond},
		{"Millisecond YAML value", "500ms", "", 500 * time.Millisecond},
		{"Bare YAML number is seconds", "10", "", 10 * time.Second},
		{"Environment seconds override YAML", "500ms", "2", 2 * time.Second},
		{"Environment duration override YAML", "10", "1500ms", 1500 * time.Millisecond},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			yamlPath := filepath.Join(dir, "config.yaml")
			content := "auth:\n  apiKey: yaml-key\nreddit:\n  baseURL: https://oauth.example.com\n  requestTimeout: " + tc.yaml + "\n"
			require.NoError(t, os.WriteFile(yamlPath, []byte(content), 0o600))

			t.Setenv("API_KEY", "")
			t.Setenv("REDDIT_BASE_URL", "")
			t.Setenv("REDDIT_REQUEST_TIMEOUT", tc.env)

			config, err := LoadConfig(filepath.Join(dir, "missing.env"), yamlPath, testLogger())
			require.NoError(t, err)
			assert.Equal(t, tc.expected, config.Reddit.RequestTimeout)
			assert.Equal(t, "https://oauth.example.com", config.Reddit.BaseURL)
			assert.Equal(t, "RedditAPIWrapper/1.0", config.Reddit.DefaultUserAgent)
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.env"), filepath.Join(dir, "missing.yaml"), testLogger())
	assert.Error(t, err)

	badYAML := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badYAML, []byte("server: [unterminated"), 0o600))
	_, err = LoadConfig(filepath.Join(dir, "missing.env"), badYAML, testLogger())
	assert.Error(t, err)

	badTimeout := filepath.Join(dir, "timeout.yaml")
	require.NoError(t, os.WriteFile(badTimeout, []byte("reddit:\n  requestTimeout: soon\n"), 0o600))
	_, err = LoadConfig(filepath.Join(dir, "missing.env"), badTimeout, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requestTimeout")

	t.Setenv("API_KEY", "")
	_, err = LoadConfig(filepath.Join(dir, "missing.env"), "", testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY")
}
