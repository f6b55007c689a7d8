package healthcheck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/l3aro/pyflow/internal/config"
)

func TestCheckWithNilConfig(t *testing.T) {
	_, err := Check(context.Background(), nil, "")
	if err == nil {
		t.Error("Expected error for nil config, got nil")
	}
}

func TestCheckMissingGraphvizOnlyMattersForImages(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		format string
		wantOK bool
	}{
		{"png", false},
		{"svg", false},
		{"dot", true},
		{"mermaid", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Format = tt.format
			cfg.DotBinary = "pyflow-no-such-graphviz"
			cfg.OutputDir = filepath.Join(dir, "out")
			cfg.CacheDir = filepath.Join(dir, "cache")

			result, err := Check(context.Background(), cfg, "")
			if err != nil {
				t.Fatalf("Check() failed: %v", err)
			}
			if result.Graphviz.Status != StatusError {
				t.Errorf("Graphviz.Status = %q, want %q", result.Graphviz.Status, StatusError)
			}
			if result.OK() != tt.wantOK {
				t.Errorf("OK() = %v, want %v", result.OK(), tt.wantOK)
			}
		})
	}
}

func TestCheckDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"existing", dir, StatusReady},
		{"missing", filepath.Join(dir, "a", "b"), StatusMissing},
		{"file", file, StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checkDir("output", tt.path, true)
			if got.Status != tt.want {
				t.Errorf("checkDir(%q).Status = %q, want %q (%s)", tt.path, got.Status, tt.want, got.Error)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "a")); !os.IsNotExist(err) {
		t.Error("checkDir must not create directories")
	}
}

func TestCheckCacheDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.CacheEnabled = false

	got := checkCache(cfg)
	if got.Status != StatusDisabled {
		t.Errorf("Status = %q, want %q", got.Status, StatusDisabled)
	}
}

func TestScopeFromPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	globalPath := ""
	if home != "" {
		globalPath = filepath.Join(home, ".pyflow", "config.yaml")
	}

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"empty path", "", ""},
		{"global path", globalPath, "global"},
		{"project path", "/project/.pyflow/config.yaml", "project"},
		{"relative project path", ".pyflow/config.yaml", "project"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.path == "" && tt.expected != "" {
				t.Skip("home directory unavailable")
			}
			result := scopeFromPath(tt.path)
			if result != tt.expected {
				t.Errorf("scopeFromPath(%q) = %q, want %q", tt.path, result, tt.expected)
			}
		})
	}
}
