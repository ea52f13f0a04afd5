package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brettboylen/reddit-insights/api"
	"github.com/brettboylen/reddit-insights/server"
	"github.com/brettboylen/reddit-insights/utils"
)

func main() {
	envPath := flag.String("env", ".env", "Path to .env file")
	configPath := flag.String("config", "", "Path to an optional YAML config file")
	logLevel := flag.String("log-level", "", "Logging level (debug, info, warn, error), overrides LOG_LEVEL")
	flag.Parse()

	log := setupLogger(*logLevel)
	log.Info("Starting Reddit API Wrapper")

	config, err := utils.LoadConfig(*envPath, *configPath, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	if *logLevel == "" {
		log.SetLevel(parseLevel(config.App.LogLevel))
	}

	log.WithFields(logrus.Fields{
		"server_port":             config.Server.Port,
		"max_requests_per_minute": config.Server.MaxRequestsPerMinute,
		"reddit_base_url":         config.Reddit.BaseURL,
		"version":                 config.App.Version,
	}).Info("Configuration loaded")

	// every request carries its own Reddit app credentials, so clients are built per request
	newClient := func(credentials api.Credentials) server.RedditClient {
		return api.NewRedditAPI(api.ClientConfig{
			Credentials: credentials,
			BaseURL:     config.Reddit.BaseURL,
			AuthURL:     config.Reddit.AuthURL,
			Timeout:     config.Reddit.RequestTimeout,
		}, log)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := server.New(config, newClient, log)
	go func() {
		if err := srv.Start(ctx); err != nil {
			log.WithError(err).Fatal("API server stopped unexpectedly")
		}
	}()

	waitForShutdown(cancel, log)
}

// setupLogger sets up the logger with the specified log level
func setupLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	log.SetLevel(parseLevel(level))

	return log
}

func parseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// waitForShutdown waits for a shutdown signal
func waitForShutdown(cancel context.CancelFunc, log *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.WithField("signal", sig.String()).Info("Shutdown signal received")

	cancel()

	time.Sleep(1 * time.Second)
	log.Info("Reddit API Wrapper stopped")
}
