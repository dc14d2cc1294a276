package config

import "time"

// Default values for configuration.
const (
	// API client defaults
	DefaultAPIURL         = "http://localhost:8000/api"
	DefaultSessionFile    = ".agent_session.yml"
	DefaultRequestTimeout = 0 * time.Second

	// Summary job defaults
	DefaultPollInterval = 2 * time.Second
	DefaultWaitTimeout  = 5 * time.Minute
	DefaultSummaryDays  = 7

	// Dev server defaults
	DefaultServerHost       = "127.0.0.1"
	DefaultServerPort       = 8000
	DefaultPathPrefix       = "/api"
	DefaultShutdownTimeout  = 15 * time.Second
	DefaultReadTimeout      = 10 * time.Second
	DefaultWriteTimeout     = 10 * time.Second
	DefaultIdleTimeout      = 60 * time.Second
	DefaultVerificationCode = "00000"
	DefaultVerificationTTL  = 10 * time.Minute
	DefaultJobTTL           = 24 * time.Hour
	DefaultJobTimeout       = 2 * time.Minute
	DefaultCleanupInterval  = 1 * time.Hour

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)
