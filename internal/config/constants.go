package config

import "time"

// Application constants
const (
	AppName    = "SalesPulse"
	AppVersion = "1.0.0"

	// License
	LicenseFileName     = "license_config.json"
	RegistryFileName    = "Licencias.txt"
	DefaultRegistryURL  = "https://raw.githubusercontent.com/NahuelDumo/Dashboard-Automatizado-en-Python/refs/heads/main/Licencias.txt"
	LicenseCheckTimeout = 10 * time.Second

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	// HTTP
	DefaultRequestTimeout = 2 * time.Minute
	DefaultMaxUploadBytes = 64 << 20

	// File Paths (relative to the base directory)
	DefaultDataDir   = "data"
	DefaultOutputDir = "reports"
	DefaultLogsDir   = "logs"

	// Memo cache
	DefaultCacheEntries = 16

	// Charts
	ChartRenderTimeout = 30 * time.Second
)
