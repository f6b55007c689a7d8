// Package healthcheck verifies that a configuration can actually be used:
// the Graphviz binary runs and the output and cache directories are
// writable.
package healthcheck

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/l3aro/pyflow/internal/config"
	"github.com/l3aro/pyflow/pkg/render"
)

// Status values reported per component.
const (
	StatusReady    = "ready"
	StatusMissing  = "missing" // directory will be created on first use
	StatusDisabled = "disabled"
	StatusError    = "error"
)

// ComponentStatus represents the health of one dependency.
type ComponentStatus struct {
	Name     string
	Detail   string // version string or path
	Status   string
	Error    string
	Required bool // an error here makes the configuration unusable
}

// HealthCheckResult contains the full health check output for display.
type HealthCheckResult struct {
	SavedPath  string
	SavedScope string // "global" or "project"
	Graphviz   ComponentStatus
	OutputDir  ComponentStatus
	Cache      ComponentStatus
}

// Components returns the checked components in display order.
func (r *HealthCheckResult) Components() []ComponentStatus {
	return []ComponentStatus{r.Graphviz, r.OutputDir, r.Cache}
}

// OK reports whether every required component is usable.
func (r *HealthCheckResult) OK() bool {
	for _, c := range r.Components() {
		if c.Required && c.Status == StatusError {
			return false
		}
	}
	return true
}

// Check performs a health check against the given config.
// savedPath is the config file in use, empty when only defaults apply.
func Check(ctx context.Context, cfg *config.Config, savedPath string) (*HealthCheckResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	return &HealthCheckResult{
		SavedPath:  savedPath,
		SavedScope: scopeFromPath(savedPath),
		Graphviz:   checkGraphviz(ctx, cfg.DotBinary, needsGraphviz(cfg.Format)),
		OutputDir:  checkDir("output", cfg.OutputDir, true),
		Cache:      checkCache(cfg),
	}, nil
}

// scopeFromPath determines "global" or "project" scope from a config file path.
// Returns empty string if path is empty.
func scopeFromPath(path string) string {
	if path == "" {
		return ""
	}

	home, err := os.UserHomeDir()
	if err == nil {
		globalDir := filepath.Join(home, config.Dir)
		if strings.HasPrefix(path, globalDir) {
			return "global"
		}
	}

	return "project"
}

// needsGraphviz reports whether format is produced by the dot binary.
func needsGraphviz(format string) bool {
	switch format {
	case render.FormatDOT, render.FormatMermaid:
		return false
	default:
		return true
	}
}

// checkGraphviz runs "<binary> -V" and records the reported version.
func checkGraphviz(ctx context.Context, binary string, required bool) ComponentStatus {
	status := ComponentStatus{Name: "graphviz", Required: required}
	if binary == "" {
		binary = "dot"
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		status.Status = StatusError
		status.Error = fmt.Sprintf("%s not found on PATH", binary)
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "-V").CombinedOutput()
	if err != nil {
		status.Status = StatusError
		status.Error = fmt.Sprintf("running %s -V: %v", path, err)
		return status
	}

	status.Status = StatusReady
	status.Detail = strings.TrimSpace(string(out))
	return status
}

// checkDir verifies dir is a writable directory. A missing directory is
// fine as long as its nearest existing parent is writable.
func checkDir(name, dir string, required bool) ComponentStatus {
	status := ComponentStatus{Name: name, Detail: dir, Required: required}

	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		status.Status = StatusError
		status.Error = fmt.Sprintf("%s is not a directory", dir)
		return status
	case err == nil:
		status.Status = StatusReady
	case os.IsNotExist(err):
		status.Status = StatusMissing
		dir = existingParent(dir)
	default:
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}

	if err := probeWritable(dir); err != nil {
		status.Status = StatusError
		status.Error = fmt.Sprintf("%s is not writable: %v", dir, err)
	}
	return status
}

func checkCache(cfg *config.Config) ComponentStatus {
	if !cfg.CacheEnabled {
		return ComponentStatus{Name: "cache", Detail: cfg.CacheDir, Status: StatusDisabled}
	}
	return checkDir("cache", cfg.CacheDir, false)
}

func existingParent(dir string) string {
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".pyflow-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
