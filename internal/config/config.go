package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/l3aro/pyflow/pkg/render"
)

// Dir is the per-user and per-project configuration directory name.
const Dir = ".pyflow"

// Config holds all configuration for pyflow
type Config struct {
	// EntryFunction is the function the simulation starts from
	EntryFunction string `yaml:"entry_function" env:"PYFLOW_ENTRY_FUNCTION"`

	// LabelWidth truncates node labels longer than this many characters
	LabelWidth int `yaml:"label_width" env:"PYFLOW_LABEL_WIDTH"`

	// Rendering
	OutputDir string `yaml:"output_dir" env:"PYFLOW_OUTPUT_DIR"`
	Format    string `yaml:"format" env:"PYFLOW_FORMAT"`
	DotBinary string `yaml:"dot_binary" env:"PYFLOW_DOT_BINARY"`
	RankDir   string `yaml:"rank_dir" env:"PYFLOW_RANK_DIR"`

	// Analysis cache
	CacheEnabled    bool   `yaml:"cache_enabled" env:"PYFLOW_CACHE_ENABLED"`
	CacheDir        string `yaml:"cache_dir" env:"PYFLOW_CACHE_DIR"`
	CacheMaxEntries int    `yaml:"cache_max_entries" env:"PYFLOW_CACHE_MAX_ENTRIES"`
	CacheMaxBytes   int64  `yaml:"cache_max_bytes" env:"PYFLOW_CACHE_MAX_BYTES"` // 0 means unlimited

	// MaxWorkers bounds concurrent files in batch mode
	MaxWorkers int `yaml:"max_workers" env:"PYFLOW_MAX_WORKERS"`

	// Logging
	Verbose bool `yaml:"verbose" env:"PYFLOW_VERBOSE"`
	LogJSON bool `yaml:"log_json" env:"PYFLOW_LOG_JSON"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		EntryFunction:   "main",
		LabelWidth:      40,
		OutputDir:       "output",
		Format:          render.FormatPNG,
		DotBinary:       "dot",
		RankDir:         "TB",
		CacheEnabled:    true,
		CacheDir:        filepath.Join(Dir, "cache"),
		CacheMaxEntries: 256,
		CacheMaxBytes:   64 << 20,
		MaxWorkers:      4,
		Verbose:         false,
		LogJSON:         false,
	}
}

// GlobalConfigFilePath returns the global config file path (~/.pyflow/config.yaml)
func GlobalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(Dir, "config.yaml")
	}
	return filepath.Join(home, Dir, "config.yaml")
}

// ProjectConfigFilePath returns the project-level config file path (./.pyflow/config.yaml)
func ProjectConfigFilePath() string {
	return filepath.Join(Dir, "config.yaml")
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Project-level config (./.pyflow/config.yaml)
// 2. Environment variables
// 3. Global config (~/.pyflow/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	return load(GlobalConfigFilePath(), ProjectConfigFilePath())
}

func load(globalPath, projectPath string) (*Config, error) {
	cfg := DefaultConfig()

	if err := mergeFile(cfg, globalPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := mergeFile(cfg, projectPath); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeFile overlays the YAML at path onto cfg. A missing file is skipped.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PYFLOW_ENTRY_FUNCTION"); v != "" {
		cfg.EntryFunction = v
	}
	if v := os.Getenv("PYFLOW_LABEL_WIDTH"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.LabelWidth = i
		}
	}
	if v := os.Getenv("PYFLOW_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("PYFLOW_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("PYFLOW_DOT_BINARY"); v != "" {
		cfg.DotBinary = v
	}
	if v := os.Getenv("PYFLOW_RANK_DIR"); v != "" {
		cfg.RankDir = v
	}
	if v := os.Getenv("PYFLOW_CACHE_ENABLED"); v != "" {
		cfg.CacheEnabled = parseBool(v)
	}
	if v := os.Getenv("PYFLOW_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("PYFLOW_CACHE_MAX_ENTRIES"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.CacheMaxEntries = i
		}
	}
	if v := os.Getenv("PYFLOW_CACHE_MAX_BYTES"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil && i >= 0 {
			cfg.CacheMaxBytes = i
		}
	}
	if v := os.Getenv("PYFLOW_MAX_WORKERS"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.MaxWorkers = i
		}
	}
	if v := os.Getenv("PYFLOW_VERBOSE"); v != "" {
		cfg.Verbose = parseBool(v)
	}
	if v := os.Getenv("PYFLOW_LOG_JSON"); v != "" {
		cfg.LogJSON = parseBool(v)
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	if c.EntryFunction == "" {
		return fmt.Errorf("entry_function is required")
	}
	if c.LabelWidth < 4 {
		return fmt.Errorf("label_width must be at least 4")
	}
	if !render.SupportedFormat(c.Format) {
		return fmt.Errorf("invalid format: %s (must be one of %v)", c.Format, render.Formats)
	}
	if !validRankDir(c.RankDir) {
		return fmt.Errorf("invalid rank_dir: %s (must be one of %v)", c.RankDir, render.RankDirs)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.CacheEnabled {
		if c.CacheDir == "" {
			return fmt.Errorf("cache_dir is required when cache_enabled is true")
		}
		if c.CacheMaxEntries <= 0 {
			return fmt.Errorf("cache_max_entries must be positive")
		}
		if c.CacheMaxBytes < 0 {
			return fmt.Errorf("cache_max_bytes must not be negative")
		}
	}
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("max_workers must be positive")
	}
	return nil
}

func validRankDir(dir string) bool {
	for _, d := range render.RankDirs {
		if d == dir {
			return true
		}
	}
	return false
}

// parseInt attempts to parse a string as int
func parseInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "yes"
}
