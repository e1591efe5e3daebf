package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Generator GeneratorConfig `mapstructure:"generator" yaml:"generator"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
	Engine    EngineConfig    `mapstructure:"engine" yaml:"engine"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// GeneratorConfig tunes the content generator's presentation knobs. Detection
// semantics (filter shapes, scoring weights, thresholds) are fixed and not
// configurable.
type GeneratorConfig struct {
	// MaxLayoutFields caps how many schema fields the alert layout's
	// details section lists.
	MaxLayoutFields int `mapstructure:"max_layout_fields" yaml:"max_layout_fields"`
}

// OutputConfig controls where generated artifacts are written.
type OutputConfig struct {
	// Directory is the destination for artifact files. An empty value or
	// "stdout" prints artifacts to standard output instead.
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// EngineConfig configures the batch generation engine.
type EngineConfig struct {
	// WorkerConcurrency bounds how many scenarios are generated in parallel
	// during batch runs.
	WorkerConcurrency int `mapstructure:"worker_concurrency" yaml:"worker_concurrency"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "povforge")
	v.SetDefault("logger.log_file", "povforge.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Generator --
	v.SetDefault("generator.max_layout_fields", 10)

	// -- Output --
	v.SetDefault("output.directory", "povforge_content")

	// -- Engine --
	v.SetDefault("engine.worker_concurrency", 4)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Engine.WorkerConcurrency <= 0 {
		return fmt.Errorf("engine.worker_concurrency must be a positive integer")
	}
	if c.Generator.MaxLayoutFields <= 0 {
		return fmt.Errorf("generator.max_layout_fields must be a positive integer")
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be either 'console' or 'json', got %q", c.Logger.Format)
	}
	return nil
}
