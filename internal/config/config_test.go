package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"EntryFunction", cfg.EntryFunction, "main"},
		{"LabelWidth", cfg.LabelWidth, 40},
		{"OutputDir", cfg.OutputDir, "output"},
		{"Format", cfg.Format, "png"},
		{"DotBinary", cfg.DotBinary, "dot"},
		{"RankDir", cfg.RankDir, "TB"},
		{"CacheEnabled", cfg.CacheEnabled, true},
		{"CacheDir", cfg.CacheDir, filepath.Join(".pyflow", "cache")},
		{"CacheMaxEntries", cfg.CacheMaxEntries, 256},
		{"CacheMaxBytes", cfg.CacheMaxBytes, int64(64 << 20)},
		{"MaxWorkers", cfg.MaxWorkers, 4},
		{"Verbose", cfg.Verbose, false},
		{"LogJSON", cfg.LogJSON, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("DefaultConfig().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{"defaults", func(*Config) {}, ""},
		{"svg with LR", func(c *Config) { c.Format = "svg"; c.RankDir = "LR" }, ""},
		{"mermaid", func(c *Config) { c.Format = "mermaid" }, ""},
		{"cache disabled needs no dir", func(c *Config) { c.CacheEnabled = false; c.CacheDir = "" }, ""},
		{"missing entry", func(c *Config) { c.EntryFunction = "" }, "entry_function is required"},
		{"tiny label width", func(c *Config) { c.LabelWidth = 3 }, "label_width"},
		{"unknown format", func(c *Config) { c.Format = "gif" }, "invalid format"},
		{"unknown rank dir", func(c *Config) { c.RankDir = "UP" }, "invalid rank_dir"},
		{"missing output dir", func(c *Config) { c.OutputDir = "" }, "output_dir is required"},
		{"missing cache dir", func(c *Config) { c.CacheDir = "" }, "cache_dir is required"},
		{"zero cache entries", func(c *Config) { c.CacheMaxEntries = 0 }, "cache_max_entries"},
		{"unlimited cache bytes", func(c *Config) { c.CacheMaxBytes = 0 }, ""},
		{"negative cache bytes", func(c *Config) { c.CacheMaxBytes = -1 }, "cache_max_bytes"},
		{"zero workers", func(c *Config) { c.MaxWorkers = 0 }, "max_workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.errContains)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.errContains)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		check       func(*testing.T, *Config)
		errContains string
	}{
		{
			name:    "partial file keeps defaults",
			content: "entry_function: run\nformat: svg\n",
			check: func(t *testing.T, c *Config) {
				if c.EntryFunction != "run" || c.Format != "svg" {
					t.Errorf("got entry=%s format=%s", c.EntryFunction, c.Format)
				}
				if c.LabelWidth != 40 {
					t.Errorf("LabelWidth = %d, want default 40", c.LabelWidth)
				}
			},
		},
		{
			name:    "cache settings",
			content: "cache_enabled: false\ncache_max_entries: 8\ncache_max_bytes: 1024\nmax_workers: 2\n",
			check: func(t *testing.T, c *Config) {
				if c.CacheEnabled || c.CacheMaxEntries != 8 || c.CacheMaxBytes != 1024 || c.MaxWorkers != 2 {
					t.Errorf("unexpected cache settings: %+v", c)
				}
			},
		},
		{
			name:        "invalid yaml",
			content:     "format: [png\n",
			errContains: "failed to parse",
		},
		{
			name:        "invalid value",
			content:     "rank_dir: sideways\n",
			errContains: "invalid rank_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			cfg, err := LoadFromFile(path)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("LoadFromFile() error = %v, want containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFromFile() unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("LoadFromFile() error = %v, want read failure", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PYFLOW_ENTRY_FUNCTION", "start")
	t.Setenv("PYFLOW_LABEL_WIDTH", "24")
	t.Setenv("PYFLOW_FORMAT", "dot")
	t.Setenv("PYFLOW_RANK_DIR", "LR")
	t.Setenv("PYFLOW_CACHE_ENABLED", "0")
	t.Setenv("PYFLOW_MAX_WORKERS", "not-a-number")
	t.Setenv("PYFLOW_CACHE_MAX_BYTES", "4096")
	t.Setenv("PYFLOW_VERBOSE", "yes")
	t.Setenv("PYFLOW_LOG_JSON", "true")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.EntryFunction != "start" {
		t.Errorf("EntryFunction = %s", cfg.EntryFunction)
	}
	if cfg.LabelWidth != 24 {
		t.Errorf("LabelWidth = %d", cfg.LabelWidth)
	}
	if cfg.Format != "dot" || cfg.RankDir != "LR" {
		t.Errorf("Format/RankDir = %s/%s", cfg.Format, cfg.RankDir)
	}
	if cfg.CacheEnabled {
		t.Error("CacheEnabled should be false")
	}
	if cfg.CacheMaxBytes != 4096 {
		t.Errorf("CacheMaxBytes = %d", cfg.CacheMaxBytes)
	}
	if cfg.MaxWorkers != 4 {
		t.Errorf("MaxWorkers = %d, invalid numbers keep the default", cfg.MaxWorkers)
	}
	if !cfg.Verbose || !cfg.LogJSON {
		t.Error("Verbose and LogJSON should be enabled")
	}
}

func TestLoadPriority(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global.yaml")
	project := filepath.Join(dir, "project.yaml")

	if err := os.WriteFile(global, []byte("format: svg\nlabel_width: 30\nmax_workers: 6\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(project, []byte("format: pdf\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PYFLOW_FORMAT", "dot")
	t.Setenv("PYFLOW_LABEL_WIDTH", "20")

	cfg, err := load(global, project)
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if cfg.Format != "pdf" {
		t.Errorf("Format = %s, project file wins", cfg.Format)
	}
	if cfg.LabelWidth != 20 {
		t.Errorf("LabelWidth = %d, env beats global", cfg.LabelWidth)
	}
	if cfg.MaxWorkers != 6 {
		t.Errorf("MaxWorkers = %d, global beats defaults", cfg.MaxWorkers)
	}
}

func TestLoadWithoutFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, err := load(filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yaml"))
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if cfg.EntryFunction != "main" {
		t.Errorf("EntryFunction = %s", cfg.EntryFunction)
	}
}

func TestConfigSaveCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", Dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.EntryFunction = "run"
	cfg.Format = "mermaid"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if loaded.EntryFunction != "run" || loaded.Format != "mermaid" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}
