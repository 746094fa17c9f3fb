// Package config provides configuration management for the minutes CLI.
// It supports loading configuration from YAML files, environment variables,
// and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultModel               = "openai/gpt-4o-mini"
	DefaultBaseURL             = "https://openrouter.ai/api"
	DefaultTimeout             = 60 * time.Second
	DefaultConfidenceThreshold = 0.7
	DefaultOverloadLimit       = 3
	DefaultAmbiguityPolicy     = "reject"
	DefaultOutputDir           = "output"
	DefaultConfigDir           = ".minutes"
	DefaultConfigFile          = "config.yaml"
)

// OracleConfig holds oracle provider settings.
type OracleConfig struct {
	// Model is the model identifier sent to the provider.
	Model string `yaml:"model"`

	// BaseURL is the provider API base URL.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against the provider. Never written to the
	// config file; supplied via OPENROUTER_API_KEY.
	APIKey string `yaml:"-"`

	// Timeout bounds a single completion round trip.
	Timeout time.Duration `yaml:"timeout"`
}

// PipelineConfig holds resolution pipeline tuning.
type PipelineConfig struct {
	// ConfidenceThreshold flags oracle owner matches below it for review.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// OverloadLimit is the max items per (owner, deadline) group before an
	// overload warning is reported.
	OverloadLimit int `yaml:"overload_limit"`
}

// DirectoryConfig holds people directory settings.
type DirectoryConfig struct {
	// Path is the default people directory file (JSON or YAML).
	Path string `yaml:"path"`

	// AmbiguityPolicy resolves first-name ties: "reject" or "first-match".
	AmbiguityPolicy string `yaml:"ambiguity_policy"`
}

// Config holds the CLI configuration settings.
type Config struct {
	Oracle    OracleConfig    `yaml:"oracle"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Directory DirectoryConfig `yaml:"directory"`

	// OutputDir is where processed results are written.
	OutputDir string `yaml:"output_dir"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Oracle: OracleConfig{
			Model:   DefaultModel,
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Pipeline: PipelineConfig{
			ConfidenceThreshold: DefaultConfidenceThreshold,
			OverloadLimit:       DefaultOverloadLimit,
		},
		Directory: DirectoryConfig{
			AmbiguityPolicy: DefaultAmbiguityPolicy,
		},
		OutputDir: DefaultOutputDir,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $MINUTES_CONFIG_DIR if set, otherwise ~/.minutes
func ConfigDir() (string, error) {
	if dir := os.Getenv("MINUTES_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// Load loads the configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.minutes/config.yaml or $MINUTES_CONFIG_DIR/config.yaml)
// 3. Environment variables (MINUTES_*, OPENROUTER_API_KEY)
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// A temp struct keeps the duration as a string in YAML.
	type oracleFile struct {
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	}
	type configFile struct {
		Oracle    oracleFile      `yaml:"oracle"`
		Pipeline  PipelineConfig  `yaml:"pipeline"`
		Directory DirectoryConfig `yaml:"directory"`
		OutputDir string          `yaml:"output_dir"`
		Debug     bool            `yaml:"debug"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.Oracle.Model != "" {
		cfg.Oracle.Model = fileCfg.Oracle.Model
	}
	if fileCfg.Oracle.BaseURL != "" {
		cfg.Oracle.BaseURL = fileCfg.Oracle.BaseURL
	}
	if fileCfg.Oracle.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Oracle.Timeout)
		if err != nil {
			return fmt.Errorf("parsing oracle timeout: %w", err)
		}
		cfg.Oracle.Timeout = timeout
	}
	if fileCfg.Pipeline.ConfidenceThreshold != 0 {
		cfg.Pipeline.ConfidenceThreshold = fileCfg.Pipeline.ConfidenceThreshold
	}
	if fileCfg.Pipeline.OverloadLimit != 0 {
		cfg.Pipeline.OverloadLimit = fileCfg.Pipeline.OverloadLimit
	}
	if fileCfg.Directory.Path != "" {
		cfg.Directory.Path = fileCfg.Directory.Path
	}
	if fileCfg.Directory.AmbiguityPolicy != "" {
		cfg.Directory.AmbiguityPolicy = fileCfg.Directory.AmbiguityPolicy
	}
	if fileCfg.OutputDir != "" {
		cfg.OutputDir = fileCfg.OutputDir
	}
	cfg.Debug = fileCfg.Debug

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.Oracle.APIKey = v
	}

	if v := os.Getenv("MINUTES_MODEL"); v != "" {
		cfg.Oracle.Model = v
	}

	if v := os.Getenv("MINUTES_BASE_URL"); v != "" {
		cfg.Oracle.BaseURL = v
	}

	if v := os.Getenv("MINUTES_TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			cfg.Oracle.Timeout = timeout
		}
	}

	if v := os.Getenv("MINUTES_CONFIDENCE_THRESHOLD"); v != "" {
		if threshold, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pipeline.ConfidenceThreshold = threshold
		}
	}

	if v := os.Getenv("MINUTES_PEOPLE_FILE"); v != "" {
		cfg.Directory.Path = v
	}

	if v := os.Getenv("MINUTES_AMBIGUITY_POLICY"); v != "" {
		cfg.Directory.AmbiguityPolicy = v
	}

	if v := os.Getenv("MINUTES_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}

	if v := os.Getenv("MINUTES_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Oracle.Model == "" {
		return fmt.Errorf("oracle.model is required")
	}

	if c.Oracle.Timeout <= 0 {
		return fmt.Errorf("oracle.timeout must be positive")
	}

	if c.Pipeline.ConfidenceThreshold < 0 || c.Pipeline.ConfidenceThreshold > 1 {
		return fmt.Errorf("pipeline.confidence_threshold must be in [0,1]")
	}

	if c.Pipeline.OverloadLimit < 1 {
		return fmt.Errorf("pipeline.overload_limit must be at least 1")
	}

	switch c.Directory.AmbiguityPolicy {
	case "reject", "first-match":
	default:
		return fmt.Errorf("invalid directory.ambiguity_policy: %q (must be reject or first-match)", c.Directory.AmbiguityPolicy)
	}

	return nil
}

// Save writes the configuration to the config file.
func Save(cfg *Config) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	type oracleFile struct {
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	}
	type configFile struct {
		Oracle    oracleFile      `yaml:"oracle"`
		Pipeline  PipelineConfig  `yaml:"pipeline"`
		Directory DirectoryConfig `yaml:"directory"`
		OutputDir string          `yaml:"output_dir"`
		Debug     bool            `yaml:"debug,omitempty"`
	}

	fileCfg := configFile{
		Oracle: oracleFile{
			Model:   cfg.Oracle.Model,
			BaseURL: cfg.Oracle.BaseURL,
			Timeout: cfg.Oracle.Timeout.String(),
		},
		Pipeline:  cfg.Pipeline,
		Directory: cfg.Directory,
		OutputDir: cfg.OutputDir,
		Debug:     cfg.Debug,
	}

	data, err := yaml.Marshal(&fileCfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
