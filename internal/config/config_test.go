package config

import (
	"os"
	"path/filepath"
	"testing"

	"whatsorders/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `{"database": {"path": "/tmp/test.db"}}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, constants.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, constants.DefaultContextWindowMinutes, cfg.Resolver.ContextWindowMinutes)
	assert.Equal(t, constants.DefaultContextScanLimit, cfg.Resolver.ContextScanLimit)
	assert.Equal(t, constants.DefaultRetryBackoffMs, cfg.Retry.InitialBackoffMs)
	assert.Equal(t, constants.DefaultMaxAttempts, cfg.Retry.MaxAttempts)
	assert.Equal(t, constants.DefaultDatabaseMaxOpenConns, cfg.Database.MaxOpenConnections)
	assert.Equal(t, constants.DefaultDatabaseMaxIdleConns, cfg.Database.MaxIdleConnections)
	assert.Equal(t, "whatsorders", cfg.Tracing.ServiceName)
	assert.Equal(t, 0.1, cfg.Tracing.SampleRate)
	assert.Equal(t, 0, cfg.RetentionDays)
}

func TestLoadConfigExplicitValues(t *testing.T) {
	path := writeConfig(t, `{
		"logLevel": "debug",
		"retentionDays": 90,
		"database": {"path": "/tmp/test.db", "maxOpenConnections": 4, "maxIdleConnections": 2},
		"server": {"port": 9000},
		"resolver": {"contextWindowMinutes": 45, "contextScanLimit": 20},
		"retry": {"maxAttempts": 7},
		"aliases": [{"alias": "GreenLeaf", "companyId": 1}]
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 90, cfg.RetentionDays)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 45, cfg.Resolver.ContextWindowMinutes)
	assert.Equal(t, 20, cfg.Resolver.ContextScanLimit)
	assert.Equal(t, 7, cfg.Retry.MaxAttempts)
	assert.Equal(t, 4, cfg.Database.MaxOpenConnections)
	assert.Equal(t, 2, cfg.Database.MaxIdleConnections)
	require.Len(t, cfg.Aliases, 1)
	assert.Equal(t, "GreenLeaf", cfg.Aliases[0].Alias)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"missing database path", `{}`, "missing database path"},
		{"negative retention", `{"database": {"path": "/tmp/t.db"}, "retentionDays": -1}`, "retention days cannot be negative"},
		{"empty alias seed", `{"database": {"path": "/tmp/t.db"}, "aliases": [{"alias": "", "companyId": 1}]}`, "empty alias"},
		{"bad company in seed", `{"database": {"path": "/tmp/t.db"}, "aliases": [{"alias": "x", "companyId": 0}]}`, "invalid company id"},
		{"malformed json", `{not json`, "invalid character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("WHATSORDERS_DB_PATH", "/tmp/override.db")
	t.Setenv("PORT", "9091")
	t.Setenv("WHATSORDERS_LOG_LEVEL", "warn")
	t.Setenv("WHATSORDERS_CONTEXT_WINDOW_MINUTES", "15")

	path := writeConfig(t, `{"database": {"path": "/tmp/original.db"}, "server": {"port": 8000}}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, 9091, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 15, cfg.Resolver.ContextWindowMinutes)
}
