package config

import "time"

// ServiceName is the OpenTelemetry service name and the CLI binary name
const ServiceName = "notlikethat"

// Timeout constants
const (
	// Dataset fetches
	DatasetFetchTimeout = 10 * time.Second

	// Database timeouts
	DatabaseConnMaxLifetime = 5 * time.Minute

	// Shutdown of exporters and the watch scheduler
	ShutdownTimeout = 5 * time.Second

	// Countdown refresh in watch mode
	CountdownTickInterval = time.Second
)

// Default values applied when a field is left empty
const (
	DefaultLogLevel        = "warn"
	DefaultSiteURL         = "https://notlikethat.app"
	DefaultTextClamp       = 400
	DefaultRefreshSchedule = "0 0 * * *"
	DefaultStorageDriver   = "sqlite"
	DefaultDatasetSource   = "embedded"
	DefaultOTLPEndpoint    = "localhost:4317"
	DefaultMaxOpenConns    = 5
	DefaultMaxIdleConns    = 2
)

// Sharing constants
const (
	// ShareTextLimit caps the item text embedded into share links
	ShareTextLimit = 280
)
