// Package config provides configuration management for extraction runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/becas/pkg/logging"
)

// Configuration validation errors.
var (
	ErrMissingInputDir   = errors.New("input_dir is required")
	ErrMissingOutputDir  = errors.New("output_dir is required")
	ErrInvalidWorkers    = errors.New("workers must be at least 1")
	ErrInvalidLogLevel   = errors.New("logging.level must be one of: trace, debug, info, warn, error, disabled")
	ErrInvalidLogFormat  = errors.New("logging.format must be 'console' or 'json'")
	ErrNoOutputsSelected = errors.New("at least one of report.json or report.xlsx must be enabled")
)

// Environment variables read by ApplyEnv.
const (
	EnvInputDir   = "BECAS_INPUT_DIR"
	EnvOutputDir  = "BECAS_OUTPUT_DIR"
	EnvCatalogDir = "BECAS_CATALOG_DIR"
	EnvStore      = "BECAS_STORE"
	EnvWorkers    = "BECAS_WORKERS"
	EnvLogLevel   = "BECAS_LOG_LEVEL"
	EnvLogFormat  = "BECAS_LOG_FORMAT"
)

// Config is the complete run configuration.
type Config struct {
	InputDir   string           `yaml:"input_dir"`
	OutputDir  string           `yaml:"output_dir"`
	CatalogDir string           `yaml:"catalog_dir"`
	CatalogID  string           `yaml:"catalog_id"`
	Workers    int              `yaml:"workers"`
	StorePath  string           `yaml:"store_path"`
	Logging    LoggingConfig    `yaml:"logging"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Report     ReportConfig     `yaml:"report"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ExtractionConfig toggles optional extraction behavior.
type ExtractionConfig struct {
	// CanonicalDefaults backfills eligible studies from the known item list
	// when too few items are recovered.
	CanonicalDefaults bool `yaml:"canonical_defaults"`
	// Preprocess strips PDF stamp lines and shredded text before extraction.
	Preprocess bool `yaml:"preprocess"`
}

// ReportConfig selects the report artefacts written by extract and report.
type ReportConfig struct {
	JSON bool `yaml:"json"`
	XLSX bool `yaml:"xlsx"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		InputDir:  "corpus",
		OutputDir: "output",
		Workers:   4,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Extraction: ExtractionConfig{
			CanonicalDefaults: true,
			Preprocess:        true,
		},
		Report: ReportConfig{
			JSON: true,
			XLSX: true,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies .env and
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	// A missing .env file is not an error.
	_ = godotenv.Load()

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides fields from BECAS_* environment variables.
func (c *Config) ApplyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString(EnvInputDir, &c.InputDir)
	setString(EnvOutputDir, &c.OutputDir)
	setString(EnvCatalogDir, &c.CatalogDir)
	setString(EnvStore, &c.StorePath)
	setString(EnvLogLevel, &c.Logging.Level)
	setString(EnvLogFormat, &c.Logging.Format)

	if v, ok := os.LookupEnv(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, ErrInvalidWorkers)
		}
		c.Workers = n
	}

	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return ErrMissingInputDir
	}
	if c.OutputDir == "" {
		return ErrMissingOutputDir
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Workers)
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: got %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLogFormat, c.Logging.Format)
	}
	if !c.Report.JSON && !c.Report.XLSX {
		return ErrNoOutputsSelected
	}
	return nil
}
