package constants

// Default server configuration values
const (
	DefaultServerPort            = 8084
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
	DefaultGracefulShutdownSec   = 30
	DefaultCleanupIntervalHours  = 24
	ServerErrorChannelSize       = 1
)

// Default database connection pool limits
const (
	DefaultDatabaseMaxOpenConns = 10
	DefaultDatabaseMaxIdleConns = 5
)

// Default retry configuration values
const (
	DefaultRetryBackoffMs        = 1000
	DefaultMaxBackoffMs          = 60000
	DefaultMaxAttempts           = 5
	DefaultDatabaseRetryAttempts = 3
)

// Default resolver configuration values
const (
	DefaultContextWindowMinutes = 30
	DefaultContextScanLimit     = 50
)

// Default retention configuration values
const (
	DefaultRetentionDays = 0 // disabled unless configured
)

// Input bounds enforced at the ingestion boundary
const (
	MaxExternalIDLength = 255
	MaxChatKeyLength    = 255
	MaxSenderLength     = 255
	MaxBodyLength       = 65536
	MaxMediaPerMessage  = 32
	MaxMediaRefLength   = 1024
	MaxBatchSize        = 500
	MaxRequestBodyBytes = 10 << 20
)

// Alias bounds
const (
	MaxAliasLength = 128
)

// Encryption parameters for at-rest field encryption
const (
	EncryptionSalt       = "whatsorders-db-salt-v1"
	EncryptionLookupSalt = "whatsorders-lookup-salt-v1"
	EncryptionNonceSize  = 12
	EncryptionKeySize    = 32
	EncryptionIterations = 100000
)
