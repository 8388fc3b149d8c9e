package config

import "github.com/FrBosquet/papacore/pkg/transform"

// Project layout defaults.
const (
	DefaultSrcDir  = "src"
	DefaultDistDir = "dist"
)

// Transform defaults.
const (
	DefaultNamespace  = transform.DefaultNamespace
	DefaultLoader     = transform.DefaultLoader
	DefaultStripTypes = true
)

// Build defaults.
const (
	DefaultWorkers     = 0
	DefaultStories     = true
	DefaultMaxFileSize = "1MB"
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Telemetry defaults.
const (
	DefaultServiceName        = "papacore"
	DefaultShutdownTimeoutSec = 5
)
