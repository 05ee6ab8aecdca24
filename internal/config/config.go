package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shamspias/shrink"
)

type Config struct {
	Optimize OptimizeConfig `mapstructure:"optimize"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type OptimizeConfig struct {
	// TargetSize accepts a bare KiB number or a B/KB/MB suffix. Empty means no budget.
	TargetSize  string `mapstructure:"target_size"`
	Quality     int    `mapstructure:"quality"`
	MaxWidth    int    `mapstructure:"max_width"`
	MaxHeight   int    `mapstructure:"max_height"`
	Format      string `mapstructure:"format"`
	AspectRatio string `mapstructure:"aspect_ratio"`
	Filter      string `mapstructure:"filter"`
}

type BatchConfig struct {
	Workers   int    `mapstructure:"workers"`
	OutputDir string `mapstructure:"output_dir"`
	Report    string `mapstructure:"report"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	JSONFormat bool   `mapstructure:"json_format"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"target-size":  "optimize.target_size",
	"quality":      "optimize.quality",
	"max-width":    "optimize.max_width",
	"max-height":   "optimize.max_height",
	"format":       "optimize.format",
	"aspect-ratio": "optimize.aspect_ratio",
	"filter":       "optimize.filter",
	"workers":      "batch.workers",
	"report":       "batch.report",
	"log-level":    "logging.level",
	"log-json":     "logging.json_format",
}

// Load layers defaults, an optional config file, SHRINK_* environment
// variables and explicitly set flags, in increasing precedence. configFile may
// be empty to search the default locations; flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("optimize.target_size", "")
	v.SetDefault("optimize.quality", shrink.DefaultQuality)
	v.SetDefault("optimize.max_width", 0)
	v.SetDefault("optimize.max_height", 0)
	v.SetDefault("optimize.format", "JPEG")
	v.SetDefault("optimize.aspect_ratio", "")
	v.SetDefault("optimize.filter", "lanczos")
	v.SetDefault("batch.workers", 0)
	v.SetDefault("batch.output_dir", "")
	v.SetDefault("batch.report", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json_format", false)

	// Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("shrink")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/shrink")
		v.AddConfigPath("/etc/shrink")
	}

	// Environment variables
	v.SetEnvPrefix("SHRINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	// Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.OptimizeOptions(); err != nil {
		return err
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must not be negative")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	return nil
}

// OptimizeOptions converts the optimize section into library options.
func (c *Config) OptimizeOptions() (shrink.Options, error) {
	opts := shrink.DefaultOptions()
	opts.Quality = c.Optimize.Quality
	opts.MaxWidth = c.Optimize.MaxWidth
	opts.MaxHeight = c.Optimize.MaxHeight

	var err error
	if c.Optimize.TargetSize != "" {
		if opts.TargetSizeKB, err = shrink.ParseTargetSize(c.Optimize.TargetSize); err != nil {
			return opts, err
		}
	}
	if opts.Format, err = shrink.ParseFormat(c.Optimize.Format); err != nil {
		return opts, err
	}
	if opts.Filter, err = shrink.ParseFilter(c.Optimize.Filter); err != nil {
		return opts, err
	}
	if c.Optimize.AspectRatio != "" {
		ar, err := shrink.ParseAspectRatio(c.Optimize.AspectRatio)
		if err != nil {
			return opts, err
		}
		opts.AspectRatio = &ar
	}
	return opts, opts.Validate()
}
