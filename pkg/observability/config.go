// Package observability provides OpenTelemetry-based tracing, metrics, and
// structured logging for the papacore CLI.
package observability

import (
	"io"
	"log/slog"
	"strings"
)

// AppMode identifies the command the binary was launched with.
type AppMode string

const (
	// ModeCLI is the generic CLI mode.
	ModeCLI AppMode = "cli"
	// ModeBuild is the project build.
	ModeBuild AppMode = "build"
	// ModeTransform is the single-file transform.
	ModeTransform AppMode = "transform"
)

const (
	defaultServiceName        = "papacore"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the semantic version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment (e.g. "ci", "dev").
	Environment string

	// Mode identifies how the binary was launched.
	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export; providers become no-op.
	OTLPEndpoint string

	// OTLPHeaders are additional gRPC metadata headers for the OTLP exporter.
	OTLPHeaders map[string]string

	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// SampleRatio is the trace sampling ratio in (0, 1). Zero samples everything.
	SampleRatio float64

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// LogJSON enables JSON-formatted log output.
	LogJSON bool

	// LogOutput receives log records. Nil means stderr.
	LogOutput io.Writer

	// ShutdownTimeoutSec is the maximum seconds to wait for flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config with sensible defaults for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// Settings is the file-level view of logging and telemetry configuration.
type Settings struct {
	LogLevel           string
	LogFormat          string
	ServiceName        string
	Environment        string
	OTLPEndpoint       string
	OTLPHeaders        string
	OTLPInsecure       bool
	SampleRatio        float64
	ShutdownTimeoutSec int
}

// FromSettings builds a Config from project settings, keeping defaults for
// empty values.
func FromSettings(s Settings, mode AppMode, version string) Config {
	cfg := DefaultConfig()
	cfg.Mode = mode
	cfg.ServiceVersion = version
	cfg.LogLevel = ParseLevel(s.LogLevel)
	cfg.LogJSON = strings.EqualFold(s.LogFormat, "json")
	cfg.Environment = s.Environment
	cfg.OTLPEndpoint = s.OTLPEndpoint
	cfg.OTLPHeaders = ParseOTLPHeaders(s.OTLPHeaders)
	cfg.OTLPInsecure = s.OTLPInsecure
	cfg.SampleRatio = s.SampleRatio

	if s.ServiceName != "" {
		cfg.ServiceName = s.ServiceName
	}

	if s.ShutdownTimeoutSec > 0 {
		cfg.ShutdownTimeoutSec = s.ShutdownTimeoutSec
	}

	return cfg
}

// ParseLevel maps a level name to its slog level. Unknown names yield info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseOTLPHeaders parses the telemetry.otlp_headers setting, a
// comma-separated list of key=value pairs. Malformed pairs are skipped and an
// input without any pair yields nil.
func ParseOTLPHeaders(raw string) map[string]string {
	var headers map[string]string

	for pair := range strings.SplitSeq(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}

		if headers == nil {
			headers = map[string]string{}
		}

		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	return headers
}
