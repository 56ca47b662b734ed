package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"gosigtest/internal/errors"
)

// Store drivers
const (
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Bootstrap    BootstrapConfig    `yaml:"bootstrap"`
	Significance SignificanceConfig `yaml:"significance"`
	Scorer       ScorerConfig       `yaml:"scorer"`
	Store        StoreConfig        `yaml:"store"`
	LogLevel     string             `yaml:"log_level" validate:"omitempty,oneof=ERROR WARN INFO DEBUG TRACE error warn info debug trace"`
}

// BootstrapConfig holds schedule and resampling settings
type BootstrapConfig struct {
	Iterations int    `yaml:"iterations" validate:"gt=0"`
	Seed       *int64 `yaml:"seed,omitempty"`
	ScratchDir string `yaml:"scratch_dir,omitempty"`
}

// SignificanceConfig holds the defaults of the graph and best-set steps
type SignificanceConfig struct {
	Threshold float64 `yaml:"threshold" validate:"gte=0,lte=1"`
	Margin    float64 `yaml:"margin" validate:"gt=0"`
	Workers   int     `yaml:"workers" validate:"gte=0"`
}

// ScorerConfig describes the external scoring command
type ScorerConfig struct {
	Command []string `yaml:"command"`
	Measure string   `yaml:"measure"`
}

// StoreConfig selects and locates the result store
type StoreConfig struct {
	Driver      string `yaml:"driver" validate:"oneof=badger postgres"`
	BadgerPath  string `yaml:"badger_path" validate:"required_if=Driver badger"`
	DatabaseURL string `yaml:"database_url" validate:"required_if=Driver postgres"`
}

var validate = validator.New()

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Bootstrap:    BootstrapConfig{Iterations: 1000},
		Significance: SignificanceConfig{Threshold: 0.05, Margin: 0.01, Workers: 1},
		Scorer:       ScorerConfig{Measure: "F1"},
		Store:        StoreConfig{Driver: DriverBadger, BadgerPath: "./sigtest-db"},
		LogLevel:     "INFO",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// SIGTEST_CONFIG (if any), then environment variables, and validates it.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("SIGTEST_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, errors.Wrap(err, "failed to load configuration file")
		}
	}

	if err := cfg.overlayEnv(); err != nil {
		return nil, errors.Wrap(err, "failed to read environment configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("configuration validation failed: %w", err))
	}
	return nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("parse %s: %w", path, err))
	}
	return nil
}

func (c *Config) overlayEnv() error {
	c.Bootstrap.Iterations = getEnvIntOrDefault("SIGTEST_ITERATIONS", c.Bootstrap.Iterations)
	c.Bootstrap.ScratchDir = getEnvOrDefault("SIGTEST_SCRATCH_DIR", c.Bootstrap.ScratchDir)
	if v := os.Getenv("SIGTEST_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("SIGTEST_SEED %q is not an integer", v))
		}
		c.Bootstrap.Seed = &seed
	}

	c.Significance.Threshold = getEnvFloatOrDefault("SIGTEST_THRESHOLD", c.Significance.Threshold)
	c.Significance.Margin = getEnvFloatOrDefault("SIGTEST_MARGIN", c.Significance.Margin)
	c.Significance.Workers = getEnvIntOrDefault("SIGTEST_WORKERS", c.Significance.Workers)

	if v := os.Getenv("SIGTEST_SCORER"); v != "" {
		c.Scorer.Command = strings.Fields(v)
	}
	c.Scorer.Measure = getEnvOrDefault("SIGTEST_MEASURE", c.Scorer.Measure)

	c.Store.Driver = getEnvOrDefault("SIGTEST_STORE", c.Store.Driver)
	c.Store.BadgerPath = getEnvOrDefault("SIGTEST_DB_PATH", c.Store.BadgerPath)
	c.Store.DatabaseURL = getEnvOrDefault("DATABASE_URL", c.Store.DatabaseURL)

	c.LogLevel = getEnvOrDefault("SIGTEST_LOG_LEVEL", c.LogLevel)
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
