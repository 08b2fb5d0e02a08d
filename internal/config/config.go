// Package config loads the on-disk YAML configuration and applies
// environment overrides. Secrets (API keys) come only from the
// environment; they are never read from or written to YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"pricecast/internal/data"
	"pricecast/internal/forecast"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Source   data.Config     `yaml:"source"`
	Forecast forecast.Config `yaml:"forecast"`
	Logging  LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Source:   data.Config{Type: "synthetic"},
		Forecast: forecast.DefaultConfig(),
		Logging:  LoggingConfig{Level: "info", Console: true},
	}
}

// Load reads path (optional, "" means defaults only), merges the
// environment on top and validates the result.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyEnv overlays environment variables onto the loaded config.
// Callers that want .env support should run godotenv.Load first.
func (c *Config) applyEnv() {
	if v := os.Getenv("API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PRICE_SOURCE"); v != "" {
		c.Source.Type = v
	}
	switch c.Source.Type {
	case "gridstatus":
		c.Source.APIKey = os.Getenv("GRIDSTATUS_API_KEY")
	case "eia":
		c.Source.APIKey = os.Getenv("EIA_API_KEY")
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Source.Type {
	case "synthetic", "gridstatus", "eia", "":
	default:
		return fmt.Errorf("source.type %q is not supported", c.Source.Type)
	}
	switch c.Forecast.Criterion {
	case "aic", "bic", "":
	default:
		return fmt.Errorf("forecast.criterion must be aic or bic, got %q", c.Forecast.Criterion)
	}
	if c.Forecast.Alpha < 0 || c.Forecast.Alpha >= 1 {
		return fmt.Errorf("forecast.alpha %v out of range [0,1)", c.Forecast.Alpha)
	}
	return nil
}
