// Package cli provides common CLI initialization utilities shared by
// cmd/cashbook and cmd/sheets-export.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"cashbook/internal/config"
	"cashbook/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger at the configured level and makes
// it the slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.LogLevel)
	if component != "" {
		logCfg.Component = component
	}
	logger := log.New(logCfg)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger, cfg *config.Config) *config.Config {
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// Bootstrap loads .env, reads the environment, sets up logging and validates
// the configuration. modify, when non-nil, adjusts the config before validation.
func Bootstrap(component string, modify func(*config.Config)) (*config.Config, *log.Logger) {
	LoadEnvFile()
	cfg := config.Load()
	if modify != nil {
		modify(cfg)
	}
	logger := SetupLogger(cfg, component)
	return LoadAndValidateConfig(logger, cfg), logger
}
