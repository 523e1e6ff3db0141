// Package config provides configuration management for the normalizer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrInvalidDataset      = errors.New("normalizer.dataset must be one of: auto, repairs, music")
	ErrMissingInputPath    = errors.New("normalizer.input is required")
	ErrInvalidOutputFormat = errors.New("normalizer.output.format must be one of: json, yaml, xlsx")
	ErrInvalidIndent       = errors.New("normalizer.output.indent must be between 0 and 8")
	ErrMissingReportPath   = errors.New("normalizer.report.path is required when the report is enabled")
	ErrSamePaths           = errors.New("normalizer.input and normalizer.output.path must differ")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXLSX = "xlsx"
)

// Environment variables overriding file values.
const (
	EnvDataset      = "NORMALIZER_DATASET"
	EnvInput        = "NORMALIZER_INPUT"
	EnvOutput       = "NORMALIZER_OUTPUT"
	EnvFormat       = "NORMALIZER_FORMAT"
	EnvIndent       = "NORMALIZER_INDENT"
	EnvCreateBackup = "NORMALIZER_CREATE_BACKUP"
	EnvReport       = "NORMALIZER_REPORT"
	EnvLogLevel     = "NORMALIZER_LOG_LEVEL"
)

// DefaultConfigPath is where the CLIs look for a config file when none is given.
const DefaultConfigPath = "configs/normalizer.yaml"

// Config represents the complete normalizer configuration.
type Config struct {
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Features   FeaturesConfig   `yaml:"features"`
}

// NormalizerConfig contains the run settings.
type NormalizerConfig struct {
	Dataset string        `yaml:"dataset"`
	Input   string        `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Report  ReportConfig  `yaml:"report"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig defines output behavior.
type OutputConfig struct {
	Path         string `yaml:"path"`
	Format       string `yaml:"format"`
	Indent       int    `yaml:"indent"`
	CreateBackup bool   `yaml:"create_backup"`
}

// ReportConfig controls the markdown summary report.
type ReportConfig struct {
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FeaturesConfig contains feature flags.
type FeaturesConfig struct {
	WarnOnConflicts bool `yaml:"warn_on_conflicts"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Normalizer: NormalizerConfig{
			Dataset: "auto",
			Input:   "dataset_reparacoes.json",
			Output: OutputConfig{
				Format: FormatJSON,
				Indent: 4,
			},
			Report: ReportConfig{
				Path: "report.md",
			},
			Logging: LoggingConfig{Level: "info"},
		},
		Features: FeaturesConfig{
			WarnOnConflicts: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Load resolves the configuration used by the CLIs: defaults, then the YAML
// file at path (if any), then .env and process environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields with NORMALIZER_* environment variables.
func (c *Config) ApplyEnv() {
	c.Normalizer.Dataset = getEnv(EnvDataset, c.Normalizer.Dataset)
	c.Normalizer.Input = getEnv(EnvInput, c.Normalizer.Input)
	c.Normalizer.Output.Path = getEnv(EnvOutput, c.Normalizer.Output.Path)
	c.Normalizer.Output.Format = getEnv(EnvFormat, c.Normalizer.Output.Format)
	c.Normalizer.Output.Indent = getEnvInt(EnvIndent, c.Normalizer.Output.Indent)
	c.Normalizer.Output.CreateBackup = getEnvBool(EnvCreateBackup, c.Normalizer.Output.CreateBackup)
	c.Normalizer.Logging.Level = getEnv(EnvLogLevel, c.Normalizer.Logging.Level)

	if report := getEnv(EnvReport, ""); report != "" {
		c.Normalizer.Report.Enabled = true
		c.Normalizer.Report.Path = report
	}
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	n := c.Normalizer

	validDatasets := map[string]bool{"auto": true, "repairs": true, "music": true}
	if !validDatasets[n.Dataset] {
		return ErrInvalidDataset
	}

	if strings.TrimSpace(n.Input) == "" {
		return ErrMissingInputPath
	}

	if n.Output.Path != "" && filepath.Clean(n.Input) == filepath.Clean(n.Output.Path) {
		return ErrSamePaths
	}

	validFormats := map[string]bool{FormatJSON: true, FormatYAML: true, FormatXLSX: true}
	if !validFormats[n.Output.Format] {
		return ErrInvalidOutputFormat
	}

	if n.Output.Indent < 0 || n.Output.Indent > 8 {
		return ErrInvalidIndent
	}

	if n.Report.Enabled && strings.TrimSpace(n.Report.Path) == "" {
		return ErrMissingReportPath
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[n.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// DefaultOutputPath names the output of a dataset kind when none is configured:
// new_dataset for repairs, new_music_dataset for music, with the format as
// extension.
func DefaultOutputPath(kind, format string) string {
	base := "new_dataset"
	if kind == "music" {
		base = "new_music_dataset"
	}

	if format == "" {
		format = FormatJSON
	}

	return base + "." + format
}

// ResolveOutputPath fills in the output path from the detected dataset kind
// when none was configured, and returns it.
func (c *Config) ResolveOutputPath(kind string) (string, error) {
	out := &c.Normalizer.Output

	if strings.TrimSpace(out.Path) == "" {
		out.Path = DefaultOutputPath(kind, out.Format)
	}

	if filepath.Clean(c.Normalizer.Input) == filepath.Clean(out.Path) {
		return "", ErrSamePaths
	}

	return out.Path, nil
}

// FormatFromPath guesses the output format from a file extension.
// Unknown extensions fall back to fallback.
func FormatFromPath(path, fallback string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".xlsx":
		return FormatXLSX
	default:
		return fallback
	}
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Dataset: %s, Input: %s, Output: %s (%s)}",
		c.Normalizer.Dataset,
		c.Normalizer.Input,
		c.Normalizer.Output.Path,
		c.Normalizer.Output.Format,
	)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))

	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
