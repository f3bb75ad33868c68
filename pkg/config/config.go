// Package config provides configuration loading and management for fieldmap.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Area parameters describe the mapped floor plan
	Area struct {
		// Width of the mapped area in the shared coordinate unit
		Width float64 `yaml:"width"`

		// Height of the mapped area in the shared coordinate unit
		Height float64 `yaml:"height"`

		// Resolution is the evaluation grid spacing
		Resolution float64 `yaml:"resolution"`
	} `yaml:"area"`

	// Interpolation parameters
	Interpolation struct {
		// Method selects the interpolation strategy: linear, cubic or rbf
		Method string `yaml:"method"`

		// RBFSmoothing is the smoothing factor of the RBF surface
		RBFSmoothing float64 `yaml:"rbfSmoothing"`
	} `yaml:"interpolation"`

	// Autocorrelation parameters
	Autocorrelation struct {
		// DistanceThreshold is the neighbor distance for Moran's I
		DistanceThreshold float64 `yaml:"distanceThreshold"`
	} `yaml:"autocorrelation"`

	// Output parameters
	Output struct {
		// Verbose controls the level of report output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// A 4ft x 4ft floor mapped at 1cm resolution
	cfg.Area.Width = 121.92
	cfg.Area.Height = 121.92
	cfg.Area.Resolution = 1.0

	cfg.Interpolation.Method = "cubic"
	cfg.Interpolation.RBFSmoothing = 0.1

	cfg.Autocorrelation.DistanceThreshold = 30.0

	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
