// Package config handles configuration loading and management.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/haoyan-ts/inspire-api/pkg/hand"
	"github.com/haoyan-ts/inspire-api/pkg/logger"
	"github.com/haoyan-ts/inspire-api/pkg/transport"
)

// Config is the top-level configuration of the CLI and examples.
type Config struct {
	Hand      HandConfig       `yaml:"hand" json:"hand" validate:"required"`
	Transport transport.Config `yaml:"transport" json:"transport" validate:"required"`
	Logging   logger.Config    `yaml:"logging" json:"logging"`
	Metrics   MetricsConfig    `yaml:"metrics" json:"metrics"`
}

// HandConfig selects the hardware generation.
type HandConfig struct {
	Generation int `yaml:"generation" json:"generation" validate:"required,oneof=3 4"`
}

// HardwareGeneration converts the configured integer to the domain
// type.
func (c HandConfig) HardwareGeneration() hand.Generation {
	return hand.Generation(c.Generation)
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Listen   string `yaml:"listen" json:"listen"`
	Endpoint string `yaml:"endpoint" json:"endpoint"`
}

// Default config file locations.
var configPaths = []string{
	"./config.yaml",
	"./config.yml",
	"./inspire.yaml",
	"./inspire.yml",
	"~/.config/inspire/config.yaml",
	"/etc/inspire/config.yaml",
}

// Load loads configuration from path, or from the first default
// location that exists. With no file present the defaults apply.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFile(path)
	}

	for _, p := range configPaths {
		if p[0] == '~' {
			home, err := os.UserHomeDir()
			if err == nil {
				p = filepath.Join(home, p[2:])
			}
		}
		if _, err := os.Stat(p); err == nil {
			return loadFile(p)
		}
	}

	return DefaultConfig(), nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct-level constraints.
func Validate(cfg *Config) error {
	v := validator.New()
	return v.Struct(cfg)
}

// Save writes the configuration to path, creating directories as
// needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the defaults: a Gen4 hand over Modbus/TCP at
// the device's factory address.
func DefaultConfig() *Config {
	return &Config{
		Hand: HandConfig{Generation: 4},
		Transport: transport.Config{
			Type:     "modbus-tcp",
			Address:  "192.168.11.210:6000",
			DeviceID: 1,
			Timeout:  transport.Duration(1 * time.Second),
			Serial: transport.SerialOptions{
				BaudRate: 115200,
				DataBits: 8,
				Parity:   "none",
				StopBits: 1,
			},
		},
		Logging: logger.Config{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled:  false,
			Listen:   ":9090",
			Endpoint: "/metrics",
		},
	}
}
