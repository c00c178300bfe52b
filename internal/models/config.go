package models

// ConfigError indicates an invalid or incomplete configuration.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}

type ServerConfig struct {
	Port                 int `json:"port"`
	ReadTimeoutSec       int `json:"readTimeoutSec"`
	WriteTimeoutSec      int `json:"writeTimeoutSec"`
	IdleTimeoutSec       int `json:"idleTimeoutSec"`
	CleanupIntervalHours int `json:"cleanupIntervalHours"`
}

type DatabaseConfig struct {
	Path               string `json:"path"`
	MaxOpenConnections int    `json:"maxOpenConnections"`
	MaxIdleConnections int    `json:"maxIdleConnections"`
}

// ResolverConfig bounds the context window used for company inference.
type ResolverConfig struct {
	ContextWindowMinutes int `json:"contextWindowMinutes"`
	ContextScanLimit     int `json:"contextScanLimit"`
}

type RetryConfig struct {
	InitialBackoffMs int `json:"initialBackoffMs"`
	MaxBackoffMs     int `json:"maxBackoffMs"`
	MaxAttempts      int `json:"maxAttempts"`
}

type TracingConfig struct {
	Enabled        bool    `json:"enabled"`
	ServiceName    string  `json:"serviceName"`
	ServiceVersion string  `json:"serviceVersion"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlpEndpoint"`
	SampleRate     float64 `json:"sampleRate"`
	UseStdout      bool    `json:"useStdout"`
}

// AliasSeed pre-registers a company alias at startup. Seeds are merged
// into the alias table on boot; later operator edits win.
type AliasSeed struct {
	Alias     string `json:"alias"`
	CompanyID int64  `json:"companyId"`
}

type Config struct {
	LogLevel      string         `json:"logLevel"`
	RetentionDays int            `json:"retentionDays"`
	Server        ServerConfig   `json:"server"`
	Database      DatabaseConfig `json:"database"`
	Resolver      ResolverConfig `json:"resolver"`
	Retry         RetryConfig    `json:"retry"`
	Tracing       TracingConfig  `json:"tracing"`
	Aliases       []AliasSeed    `json:"aliases,omitempty"`
}
