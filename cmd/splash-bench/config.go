package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// GraphConfig describes the synthetic topology to build.
type GraphConfig struct {
	Topology string `yaml:"topology" validate:"oneof=grid chain"`
	Rows     int    `yaml:"rows" validate:"required_if=Topology grid,omitempty,min=1"`
	Cols     int    `yaml:"cols" validate:"required_if=Topology grid,omitempty,min=1"`
	Length   int    `yaml:"length" validate:"required_if=Topology chain,omitempty,min=1"`
}

// Config is the benchmark configuration.
type Config struct {
	Graph           GraphConfig `yaml:"graph"`
	NCPUs           int         `yaml:"ncpus" validate:"min=1,max=1024"`
	SplashSize      int         `yaml:"splash_size" validate:"min=1"`
	Coupling        float64     `yaml:"coupling"`
	Tolerance       float64     `yaml:"tolerance" validate:"gt=0"`
	InitialPriority float64     `yaml:"initial_priority" validate:"gt=0"`
	MetricsAddr     string      `yaml:"metrics_addr"`
}

// DefaultConfig returns a small grid workload on 4 workers.
func DefaultConfig() *Config {
	return &Config{
		Graph:           GraphConfig{Topology: "grid", Rows: 100, Cols: 100},
		NCPUs:           4,
		SplashSize:      100,
		Coupling:        0.5,
		Tolerance:       1e-5,
		InitialPriority: 100,
	}
}

// LoadConfig reads and parses a YAML config file. Missing fields keep their
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}
