// Package cli holds the start-up steps shared by cmd/centavo,
// cmd/centavo-worker and cmd/recurring-worker.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"centavo/internal/amqp"
	"centavo/internal/config"
	"centavo/internal/log"
	"centavo/internal/services"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// Load reads the environment, installs the process logger and validates the
// settings role needs.
func Load(role config.Role, component string) (*config.Config, *log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := log.Setup(cfg.LogLevel, cfg.LogFormat, component)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(role); err != nil {
		return nil, logger, err
	}
	return cfg, logger, nil
}

// Bootstrap is Load for main functions: it exits the process on failure.
func Bootstrap(role config.Role, component string) (*config.Config, *log.Logger) {
	LoadEnvFile()
	cfg, logger, err := Load(role, component)
	if err != nil {
		if logger != nil {
			logger.Error("Configuration validation failed", log.FieldError, err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
	return cfg, logger
}

// NewPublisher connects the transaction event publisher. It returns a nil
// publisher when AMQP is not configured or the broker is unreachable, and
// the returned close func is always safe to call.
func NewPublisher(cfg *config.Config, logger *log.Logger) (services.EventPublisher, func()) {
	noop := func() {}
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - transaction events will not be published")
		return nil, noop
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return nil, noop
	}
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", log.FieldError, err)
		}
	}
}
