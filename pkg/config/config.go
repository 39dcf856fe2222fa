// Package config loads and saves the run_carp/run_cbass configuration
// from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"fusionpath/internal/kernel"
	"fusionpath/internal/prox"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Path parameters drive the ADMM/λ-schedule kernel loop.
	Path struct {
		// Gamma0 is the starting regularization level γ₀.
		Gamma0 float64 `yaml:"gamma0"`

		// T is the geometric growth factor applied to γ after burn-in.
		T float64 `yaml:"t"`

		// Rho is the ADMM penalty parameter.
		Rho float64 `yaml:"rho"`

		// MaxIter bounds the total number of ADMM steps.
		MaxIter int `yaml:"maxIter"`

		// BurnIn is the number of fixed-γ iterations before growth begins.
		BurnIn int `yaml:"burnIn"`

		// Keep is the recording stride for unchanged-fusion iterations.
		Keep int `yaml:"keep"`

		// Penalty selects the V-step's proximal operator: "l2" or "l1".
		Penalty string `yaml:"penalty"`

		// Variant selects the kernel loop: "plain" or "viz".
		Variant string `yaml:"variant"`
	} `yaml:"path"`

	// Viz parameters configure the CARP-VIZ back-tracking state machine.
	Viz struct {
		// TCoarse is the coarse γ expansion factor.
		TCoarse float64 `yaml:"tCoarse"`

		// TSwitch is the geometric shrink factor used while bisecting.
		TSwitch float64 `yaml:"tSwitch"`

		// BisectBudget bounds how many shrink attempts Bisect makes.
		BisectBudget int `yaml:"bisectBudget"`
	} `yaml:"viz"`

	// Runtime parameters control cancellation and cooperative polling.
	Runtime struct {
		// CheckEvery is how often (in iterations) the cancellation flag
		// is polled.
		CheckEvery int `yaml:"checkEvery"`
	} `yaml:"runtime"`

	// Weights parameters configure the Gaussian-kernel fusion graph
	// construction that happens upstream of the kernel loop.
	Weights struct {
		// Phi is the Gaussian kernel bandwidth.
		Phi float64 `yaml:"phi"`

		// K is the k-NN sparsification neighbor count. A non-positive
		// value means "search for the minimum connecting k".
		K int `yaml:"k"`
	} `yaml:"weights"`

	// Output parameters.
	Output struct {
		// Verbose controls the level of logging output.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with sensible path-tracking
// defaults: γ₀=1e-8, t=1.1, ρ=1, burn_in=50, keep=10, viz_t_coarse=10,
// viz_t_switch=1.01.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Path.Gamma0 = 1e-8
	cfg.Path.T = 1.1
	cfg.Path.Rho = 1.0
	cfg.Path.MaxIter = 2000
	cfg.Path.BurnIn = 50
	cfg.Path.Keep = 10
	cfg.Path.Penalty = "l2"
	cfg.Path.Variant = "viz"

	cfg.Viz.TCoarse = 10
	cfg.Viz.TSwitch = 1.01
	cfg.Viz.BisectBudget = 50

	cfg.Runtime.CheckEvery = 50

	cfg.Weights.Phi = 1.0
	cfg.Weights.K = 0

	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file. If the file doesn't
// exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

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

// ToKernelConfig translates the YAML-facing Config into the internal
// kernel.Config the path-tracking loops consume.
func (c *Config) ToKernelConfig() (kernel.Config, error) {
	kc := kernel.Config{
		Gamma0:          c.Path.Gamma0,
		T:               c.Path.T,
		Rho:             c.Path.Rho,
		MaxIter:         c.Path.MaxIter,
		BurnIn:          c.Path.BurnIn,
		Keep:            c.Path.Keep,
		VizTCoarse:      c.Viz.TCoarse,
		VizTSwitch:      c.Viz.TSwitch,
		VizBisectBudget: c.Viz.BisectBudget,
		CheckEvery:      c.Runtime.CheckEvery,
	}

	switch c.Path.Penalty {
	case "l1":
		kc.Penalty = prox.L1
	case "l2", "":
		kc.Penalty = prox.L2
	default:
		return kernel.Config{}, fmt.Errorf("config: unknown penalty %q (want \"l2\" or \"l1\")", c.Path.Penalty)
	}

	switch c.Path.Variant {
	case "plain":
		kc.Variant = kernel.Plain
	case "viz", "":
		kc.Variant = kernel.Viz
	default:
		return kernel.Config{}, fmt.Errorf("config: unknown variant %q (want \"plain\" or \"viz\")", c.Path.Variant)
	}

	return kc, nil
}
