// Package config handles application configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	History  HistoryConfig  `yaml:"history"`
	Sampler  SamplerConfig  `yaml:"sampler"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	LogLevel string         `yaml:"log_level"` // debug | info | warn | error
}

// HistoryConfig bounds the undo stack.
type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

// SamplerConfig bounds the color sample cache.
type SamplerConfig struct {
	CacheCapacity int `yaml:"cache_capacity"`
}

// PipelineConfig controls the background transform workers.
type PipelineConfig struct {
	CancelWait   time.Duration `yaml:"cancel_wait"`
	ResultBuffer int           `yaml:"result_buffer"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.defaults()
	return c
}

func (c *Config) defaults() {
	if c.History.Capacity <= 0 {
		c.History.Capacity = 50
	}
	if c.Sampler.CacheCapacity <= 0 {
		c.Sampler.CacheCapacity = 100
	}
	if c.Pipeline.CancelWait <= 0 {
		c.Pipeline.CancelWait = time.Second
	}
	if c.Pipeline.ResultBuffer <= 0 {
		c.Pipeline.ResultBuffer = 16
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Load reads a YAML configuration file and fills in defaults for anything
// the file leaves unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	c.defaults()
	return &c, nil
}
