package config

import "time"

// Application constants
const (
	AppName = "Inventory Dashboard"

	// EnvPrefix namespaces every environment variable, e.g. INVDASH_SERVER_PORT.
	EnvPrefix = "INVDASH"

	// Inventory defaults
	DefaultInventoryFile     = "Fi.txt"
	DefaultExportDir         = "exports"
	DefaultParallelThreshold = 5000
	DefaultCacheTTL          = 5 * time.Minute

	// Reload policies
	ReloadPerRequest = "per_request"
	ReloadCached     = "cached"

	// Logging outputs
	LogOutputConsole = "console"
	LogOutputFile    = "file"
	LogOutputBoth    = "both"
)
