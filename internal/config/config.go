// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"centavo/internal/core"

	"github.com/caarlos0/env/v8"
)

// Role selects which settings a binary needs.
type Role int

const (
	RoleAPI Role = iota
	RoleExportWorker
	RoleRecurringWorker
)

type Config struct {
	// HTTP server
	Port               string   `env:"PORT" envDefault:"8080"`
	CORSOrigins        []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	TrustedProxies     []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Database
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/centavo.db"`

	// Auth
	JWTSecret       string        `env:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	// Link codes
	LinkStore   string        `env:"LINK_STORE" envDefault:"memory"`
	RedisURL    string        `env:"REDIS_URL"`
	LinkCodeTTL time.Duration `env:"LINK_CODE_TTL" envDefault:"5m"`

	// Telegram
	TelegramBotToken      string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramWebhookURL    string `env:"TELEGRAM_WEBHOOK_URL"`
	TelegramWebhookSecret string `env:"TELEGRAM_WEBHOOK_SECRET"`

	DefaultCurrency string `env:"DEFAULT_CURRENCY" envDefault:"MXN"`

	// AMQP
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"centavo"`
	AMQPQueue    string `env:"AMQP_QUEUE" envDefault:"transaction_events"`

	// Google Sheets
	GoogleSpreadsheetID      string `env:"GOOGLE_SPREADSHEET_ID"`
	GoogleSheetName          string `env:"GOOGLE_SHEET_NAME" envDefault:"Transactions"`
	GoogleServiceAccountJSON string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GoogleServiceAccountFile string `env:"GOOGLE_SERVICE_ACCOUNT_FILE"`

	// Recurring worker
	RecurringInterval time.Duration `env:"RECURRING_INTERVAL" envDefault:"1h"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.DefaultCurrency = strings.ToUpper(strings.TrimSpace(cfg.DefaultCurrency))
	return cfg, nil
}

// SheetsEnabled reports whether a spreadsheet export target is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate checks the settings role needs and reports every problem at once.
func (c *Config) Validate(role Role) error {
	var errors []string

	if c.DatabasePath == "" {
		errors = append(errors, "database path cannot be empty")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if !core.ValidCurrency(c.DefaultCurrency) {
		errors = append(errors, fmt.Sprintf("invalid default currency '%s': must be a 3-letter code", c.DefaultCurrency))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch role {
	case RoleAPI:
		errors = append(errors, c.validateAPI()...)
	case RoleExportWorker:
		errors = append(errors, c.validateExportWorker()...)
	case RoleRecurringWorker:
		if c.RecurringInterval < time.Minute {
			errors = append(errors, fmt.Sprintf("invalid recurring interval %v: must be at least 1 minute", c.RecurringInterval))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (c *Config) validateAPI() []string {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET must be at least 32 characters")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errors = append(errors, "token lifetimes must be positive")
	} else if c.RefreshTokenTTL < c.AccessTokenTTL {
		errors = append(errors, "refresh token lifetime must not be shorter than access token lifetime")
	}

	switch c.LinkStore {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			errors = append(errors, "REDIS_URL is required when LINK_STORE is redis")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid link store '%s': must be memory or redis", c.LinkStore))
	}
	if c.LinkCodeTTL < 30*time.Second {
		errors = append(errors, fmt.Sprintf("invalid link code TTL %v: must be at least 30 seconds", c.LinkCodeTTL))
	}

	if c.TelegramWebhookURL != "" {
		if c.TelegramBotToken == "" {
			errors = append(errors, "TELEGRAM_BOT_TOKEN is required when TELEGRAM_WEBHOOK_URL is set")
		}
		if u, err := url.Parse(c.TelegramWebhookURL); err != nil || u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid Telegram webhook URL '%s': must be https", c.TelegramWebhookURL))
		}
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}
	return errors
}

func (c *Config) validateExportWorker() []string {
	var errors []string

	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the export worker")
	}
	if c.SheetsEnabled() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is set")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		hasJSON := c.GoogleServiceAccountJSON != ""
		if !hasFile && !hasJSON {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}
	return errors
}
