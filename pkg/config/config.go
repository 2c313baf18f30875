// Package config provides configuration loading and management for mrireg.
// It handles loading configuration from YAML files and provides default
// values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Registration parameters
	Registration struct {
		// Method selects the optimizer, "gradientdescent" or "lbfgs"
		Method string `yaml:"method"`

		// MaxIterations caps the optimizer iterations per pyramid level
		MaxIterations int `yaml:"maxIterations"`

		// StepSize is the initial gradient descent step length
		StepSize float64 `yaml:"stepSize"`

		// GradientTolerance stops a run once the gradient norm falls below it
		GradientTolerance float64 `yaml:"gradientTolerance"`

		// PyramidLevels is the number of multi-resolution levels
		PyramidLevels int `yaml:"pyramidLevels"`

		// PyramidSigma is the smoothing width applied before each
		// downsampling step, in grid-spacing units
		PyramidSigma float64 `yaml:"pyramidSigma"`

		// NumCores specifies how many CPU cores to use for metric evaluation
		NumCores int `yaml:"numCores"`
	} `yaml:"registration"`

	// Metric parameters
	Metric struct {
		// SamplerType selects the sample-point source, "grid", "random"
		// or "latin"
		SamplerType string `yaml:"samplerType"`

		// NumberOfPoints is the sample count per draw for the stochastic
		// samplers; the grid sampler always uses every grid point
		NumberOfPoints int `yaml:"numberOfPoints"`

		// Seed feeds the stochastic samplers for reproducible runs
		Seed int64 `yaml:"seed"`

		// Kernel selects the interpolation scheme, "nearest", "linear"
		// or "bspline"
		Kernel string `yaml:"kernel"`
	} `yaml:"metric"`

	// Proposal parameters for parameter-space exploration
	Proposal struct {
		// StandardDeviation is the isotropic random-walk step width
		StandardDeviation float64 `yaml:"standardDeviation"`

		// MixtureStandardDeviations are the per-component widths of the
		// mixture proposal
		MixtureStandardDeviations []float64 `yaml:"mixtureStandardDeviations"`

		// MixtureWeights are the matching component weights; they are
		// normalized at construction
		MixtureWeights []float64 `yaml:"mixtureWeights"`
	} `yaml:"proposal"`

	// Output parameters
	Output struct {
		// Verbose controls the level of progress output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default registration parameters
	cfg.Registration.Method = "gradientdescent"
	cfg.Registration.MaxIterations = 200
	cfg.Registration.StepSize = 10.0
	cfg.Registration.GradientTolerance = 1e-5
	cfg.Registration.PyramidLevels = 3
	cfg.Registration.PyramidSigma = 0.5
	cfg.Registration.NumCores = runtime.NumCPU() // Use all available cores by default

	// Set default metric parameters
	cfg.Metric.SamplerType = "grid"
	cfg.Metric.NumberOfPoints = 2048
	cfg.Metric.Seed = 42
	cfg.Metric.Kernel = "bspline"

	// Set default proposal parameters
	cfg.Proposal.StandardDeviation = 0.1
	cfg.Proposal.MixtureStandardDeviations = []float64{0.01, 0.1, 1.0}
	cfg.Proposal.MixtureWeights = []float64{0.3, 0.4, 0.3}

	// Set default output parameters
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration; values
// missing from the file keep their defaults.
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

// SaveConfig saves the configuration to a YAML file.
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

// CreateDefaultConfigFile creates a default configuration file at the
// specified path.
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
