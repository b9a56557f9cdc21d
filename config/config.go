package config

import (
	"fmt"

	"github.com/kbukum/butler/logger"
	"github.com/kbukum/butler/observability"
	"github.com/kbukum/butler/validation"
)

// DefaultFile is the task file loaded when none is given.
const DefaultFile = "build.yml"

// Config is the butler configuration. Command line flags take precedence
// over every field.
type Config struct {
	// File is the task file to load.
	File string `yaml:"file" mapstructure:"file"`
	// Jobs bounds how many tasks of one layer run at once. Zero means
	// GOMAXPROCS.
	Jobs      int                  `yaml:"jobs" mapstructure:"jobs" validate:"gte=0"`
	Logging   logger.Config        `yaml:"logging" mapstructure:"logging"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	if c.File == "" {
		c.File = DefaultFile
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// Load reads the butler configuration, applies defaults and validates it.
func Load(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig("butler", &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
