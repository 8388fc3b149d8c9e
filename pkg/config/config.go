// Package config provides configuration loading and validation for papacore
// projects.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/FrBosquet/papacore/pkg/transform"
)

// Sentinel validation errors.
var (
	ErrEmptyDir           = errors.New("directory must not be empty")
	ErrSameDirs           = errors.New("src_dir and dist_dir must differ")
	ErrInvalidWorkers     = errors.New("workers must not be negative")
	ErrInvalidMaxFileSize = errors.New("invalid max file size")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrInvalidSampleRatio = errors.New("sample ratio must be within [0, 1]")
)

const (
	configName = "papacore"
	envPrefix  = "PAPACORE"
	dotEnvFile = ".env"
)

// Config holds all configuration for one papacore project.
type Config struct {
	// ProjectRoot is the absolute project directory; it is not read from the file.
	ProjectRoot string `mapstructure:"-" yaml:"-"`
	// File is the configuration file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`

	SrcDir      string          `mapstructure:"src_dir"      yaml:"src_dir"`
	DistDir     string          `mapstructure:"dist_dir"     yaml:"dist_dir"`
	TargetVault string          `mapstructure:"target_vault" yaml:"target_vault"`
	Transform   TransformConfig `mapstructure:"transform"    yaml:"transform"`
	Build       BuildConfig     `mapstructure:"build"        yaml:"build"`
	Logging     LoggingConfig   `mapstructure:"logging"      yaml:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"    yaml:"telemetry"`
}

// TransformConfig configures the module rewrite.
type TransformConfig struct {
	Namespace         string   `mapstructure:"namespace"          yaml:"namespace"`
	Loader            string   `mapstructure:"loader"             yaml:"loader"`
	FrameworkPackages []string `mapstructure:"framework_packages" yaml:"framework_packages"`
	Vocabulary        []string `mapstructure:"vocabulary"         yaml:"vocabulary"`
	StripTypes        bool     `mapstructure:"strip_types"        yaml:"strip_types"`
}

// BuildConfig configures the build orchestrator.
type BuildConfig struct {
	MaxFileSize string `mapstructure:"max_file_size" yaml:"max_file_size"`
	Workers     int    `mapstructure:"workers"       yaml:"workers"`
	Stories     bool   `mapstructure:"stories"       yaml:"stories"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	ServiceName        string  `mapstructure:"service_name"         yaml:"service_name"`
	Environment        string  `mapstructure:"environment"          yaml:"environment"`
	OTLPEndpoint       string  `mapstructure:"otlp_endpoint"        yaml:"otlp_endpoint"`
	OTLPHeaders        string  `mapstructure:"otlp_headers"         yaml:"otlp_headers"`
	OTLPInsecure       bool    `mapstructure:"otlp_insecure"        yaml:"otlp_insecure"`
	SampleRatio        float64 `mapstructure:"sample_ratio"         yaml:"sample_ratio"`
	ShutdownTimeoutSec int     `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`
}

// SrcPath returns the absolute source directory.
func (c *Config) SrcPath() string {
	return c.abs(c.SrcDir)
}

// DistPath returns the absolute output directory.
func (c *Config) DistPath() string {
	return c.abs(c.DistDir)
}

// MaxFileSizeBytes returns the parsed per-file size limit.
func (c *Config) MaxFileSizeBytes() uint64 {
	size, err := humanize.ParseBytes(c.Build.MaxFileSize)
	if err != nil {
		return 0
	}

	return size
}

// TransformOptions maps the transform section onto transformer options.
func (c *Config) TransformOptions() transform.Options {
	return transform.Options{
		Namespace:         c.Transform.Namespace,
		Loader:            c.Transform.Loader,
		FrameworkPackages: c.Transform.FrameworkPackages,
		Vocabulary:        c.Transform.Vocabulary,
		KeepTypes:         !c.Transform.StripTypes,
	}
}

func (c *Config) abs(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}

	return filepath.Join(c.ProjectRoot, dir)
}

// LoadConfig loads the configuration of the project at projectRoot. When
// configPath is empty, papacore.{json,yaml,yml,toml} is looked up in the
// project root. A project .env file is applied before environment binding.
func LoadConfig(projectRoot, configPath string) (*Config, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	envErr := godotenv.Load(filepath.Join(root, dotEnvFile))
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", dotEnvFile, envErr)
	}

	viperCfg := viper.New()

	// Set defaults.
	setDefaults(viperCfg)

	// Read config file.
	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(root)
	}

	// Read environment variables.
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	// Older project files spell the vault key in camelCase. Registering the
	// alias after the read moves a value already loaded under it.
	viperCfg.RegisterAlias("targetVault", "target_vault")

	used := viperCfg.ConfigFileUsed()
	if used != "" && readErr == nil {
		schemaErr := ValidateFile(used)
		if schemaErr != nil {
			return nil, schemaErr
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	config.ProjectRoot = root
	if readErr == nil {
		config.File = used
	}

	validateErr := Validate(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Layout defaults.
	viperCfg.SetDefault("src_dir", DefaultSrcDir)
	viperCfg.SetDefault("dist_dir", DefaultDistDir)
	viperCfg.SetDefault("target_vault", "")

	// Transform defaults.
	viperCfg.SetDefault("transform.namespace", DefaultNamespace)
	viperCfg.SetDefault("transform.loader", DefaultLoader)
	viperCfg.SetDefault("transform.framework_packages", transform.DefaultFrameworkPackages())
	viperCfg.SetDefault("transform.vocabulary", transform.DefaultVocabulary())
	viperCfg.SetDefault("transform.strip_types", DefaultStripTypes)

	// Build defaults.
	viperCfg.SetDefault("build.workers", DefaultWorkers)
	viperCfg.SetDefault("build.stories", DefaultStories)
	viperCfg.SetDefault("build.max_file_size", DefaultMaxFileSize)

	// Logging defaults.
	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	// Telemetry defaults.
	viperCfg.SetDefault("telemetry.service_name", DefaultServiceName)
	viperCfg.SetDefault("telemetry.environment", "")
	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
	viperCfg.SetDefault("telemetry.shutdown_timeout_sec", DefaultShutdownTimeoutSec)
}

var (
	logLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	logFormats = map[string]bool{"text": true, "json": true}
)

// Validate checks semantic constraints the schema cannot express.
func Validate(config *Config) error {
	if config.SrcDir == "" || config.DistDir == "" {
		return ErrEmptyDir
	}

	if filepath.Clean(config.SrcDir) == filepath.Clean(config.DistDir) {
		return fmt.Errorf("%w: %s", ErrSameDirs, config.SrcDir)
	}

	if config.Build.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, config.Build.Workers)
	}

	if _, err := humanize.ParseBytes(config.Build.MaxFileSize); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidMaxFileSize, config.Build.MaxFileSize, err)
	}

	if !logLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	if !logFormats[strings.ToLower(config.Logging.Format)] {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if config.Telemetry.SampleRatio < 0 || config.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Telemetry.SampleRatio)
	}

	return nil
}
