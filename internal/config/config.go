package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"whatsorders/internal/constants"
	"whatsorders/internal/models"
)

var (
	ErrMissingDBPath = models.ConfigError{Message: "missing database path"}
)

// LoadConfig reads a JSON config file, applies defaults and environment
// overrides, and validates the result.
func LoadConfig(path string) (*models.Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(c *models.Config) error {
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}

	if c.Server.Port <= 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.ReadTimeoutSec <= 0 {
		c.Server.ReadTimeoutSec = constants.DefaultServerReadTimeoutSec
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = constants.DefaultServerWriteTimeoutSec
	}
	if c.Server.IdleTimeoutSec <= 0 {
		c.Server.IdleTimeoutSec = constants.DefaultServerIdleTimeoutSec
	}
	if c.Server.CleanupIntervalHours <= 0 {
		c.Server.CleanupIntervalHours = constants.DefaultCleanupIntervalHours
	}

	if c.Database.MaxOpenConnections <= 0 {
		c.Database.MaxOpenConnections = constants.DefaultDatabaseMaxOpenConns
	}
	if c.Database.MaxIdleConnections <= 0 {
		c.Database.MaxIdleConnections = constants.DefaultDatabaseMaxIdleConns
	}

	if c.Resolver.ContextWindowMinutes <= 0 {
		c.Resolver.ContextWindowMinutes = constants.DefaultContextWindowMinutes
	}
	if c.Resolver.ContextScanLimit <= 0 {
		c.Resolver.ContextScanLimit = constants.DefaultContextScanLimit
	}

	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultRetryBackoffMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultMaxBackoffMs
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultMaxAttempts
	}

	if c.RetentionDays < 0 {
		return models.ConfigError{Message: "retention days cannot be negative"}
	}

	for i, seed := range c.Aliases {
		if seed.Alias == "" {
			return models.ConfigError{Message: fmt.Sprintf("empty alias in seed %d", i)}
		}
		if seed.CompanyID <= 0 {
			return models.ConfigError{Message: fmt.Sprintf("invalid company id in alias seed %q", seed.Alias)}
		}
	}

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "whatsorders"
	}
	if c.Tracing.SampleRate <= 0 {
		c.Tracing.SampleRate = 0.1
	}

	return nil
}

func applyEnvironmentOverrides(c *models.Config) {
	if path := os.Getenv("WHATSORDERS_DB_PATH"); path != "" {
		c.Database.Path = path
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if level := os.Getenv("WHATSORDERS_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if window := os.Getenv("WHATSORDERS_CONTEXT_WINDOW_MINUTES"); window != "" {
		if m, err := strconv.Atoi(window); err == nil {
			c.Resolver.ContextWindowMinutes = m
		}
	}
}
