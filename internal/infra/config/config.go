package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage driver names accepted in STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL        string
	StorageDriver      string
	TelegramToken      string
	KitchenChatID      int64
	LogLevel           string
	Environment        string
	CronSpecDigest     string
	CronSpecMsgPoll    string
	DisableTelegramBot bool
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.StorageDriver = strings.ToLower(os.Getenv("STORAGE_DRIVER"))
	if cfg.StorageDriver == "" {
		cfg.StorageDriver = DriverMemory
	}
	if cfg.StorageDriver != DriverMemory && cfg.StorageDriver != DriverPostgres {
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.StorageDriver == DriverPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.DisableTelegramBot = os.Getenv("DISABLE_TELEGRAM_BOT") == "true"

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if !cfg.DisableTelegramBot && cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	if !cfg.DisableTelegramBot {
		kitchenIDStr := os.Getenv("KITCHEN_CHAT_ID")
		if kitchenIDStr == "" {
			return nil, fmt.Errorf("KITCHEN_CHAT_ID is not set")
		}
		var err error
		cfg.KitchenChatID, err = strconv.ParseInt(kitchenIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid KITCHEN_CHAT_ID: %w", err)
		}
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecDigest = os.Getenv("CRON_SPEC_DIGEST")
	if cfg.CronSpecDigest == "" {
		cfg.CronSpecDigest = "0 6 * * *" // Default: 06:00 daily, before breakfast service
	}

	cfg.CronSpecMsgPoll = os.Getenv("CRON_SPEC_MESSAGE_POLL")
	if cfg.CronSpecMsgPoll == "" {
		cfg.CronSpecMsgPoll = "*/1 * * * *" // Default: every minute
	}

	return cfg, nil
}
