// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the runtime binary configuration.
type Config struct {
	// Listen configures the protocol listener.
	Listen ListenConfig `yaml:"listen"`

	// Log configures the structured logger.
	Log LogConfig `yaml:"log"`

	// Project configures project handling.
	Project ProjectConfig `yaml:"project"`
}

// ListenConfig configures the TCP listener.
type ListenConfig struct {
	// Host is the bind address. Default: 127.0.0.1. The runtime has
	// no authentication; binding beyond loopback is the operator's
	// own decision.
	Host string `yaml:"host"`

	// Port is the bind port. Default: 1963.
	Port int `yaml:"port"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	// Level is debug, info, warn, or error. Default: info.
	Level string `yaml:"level"`

	// Format is text or json. Default: text.
	Format string `yaml:"format"`
}

// ProjectConfig configures project handling.
type ProjectConfig struct {
	// Autoload is a project directory to load at startup, as if an
	// IDE had sent its bundle over LOAD_PROJECT. Empty disables it.
	Autoload string `yaml:"autoload"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{Host: "127.0.0.1", Port: 1963},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the file named by LOCALSIM_CONFIG. With the variable
// unset it returns the defaults.
func Load() (*Config, error) {
	path := os.Getenv("LOCALSIM_CONFIG")
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, merged over
// the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values. Called by LoadFile; binaries call it
// again after applying flag overrides.
func (c *Config) Validate() error {
	if c.Listen.Host == "" {
		return fmt.Errorf("listen.host must not be empty")
	}
	if c.Listen.Port < 1 || c.Listen.Port > 65535 {
		return fmt.Errorf("listen.port %d out of range", c.Listen.Port)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q not one of text, json", c.Log.Format)
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Listen.Host, c.Listen.Port)
}
