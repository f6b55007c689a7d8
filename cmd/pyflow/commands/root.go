// Package commands provides the CLI commands for pyflow.
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/pyflow/internal/config"
	"github.com/l3aro/pyflow/internal/log"
	"github.com/l3aro/pyflow/pkg/cache"
	"github.com/l3aro/pyflow/pkg/simulate"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "pyflow",
	Short: "pyflow - Static execution-flow graphs for Python programs",
	Long: `pyflow walks a Python program from its entry function without running it
and draws the calls, branches and loops it would go through.

Commands:
  analyze     Simulate a file and render its flow graph
  trace       Print the visit log of a simulation
  defs        List the functions and classes of a file
  batch       Analyze every Python file under a directory
  init        Create a configuration file interactively
  doctor      Check Graphviz and the configured directories

Use "pyflow [command] --help" for more information about a command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

// settings bundles what every command derives from flags and config files.
type settings struct {
	cfg        *config.Config
	configPath string // config file in use, empty when only defaults apply
	logger     log.Logger
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
		configPath = effectiveConfigPath()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Verbose = true
	}
	if jsonLogs, _ := cmd.Flags().GetBool("log-json"); jsonLogs {
		cfg.LogJSON = true
	}
	if cmd.Flags().Lookup("entry") != nil {
		if entry, _ := cmd.Flags().GetString("entry"); entry != "" {
			cfg.EntryFunction = entry
		}
	}

	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	logger := log.New(log.LoggerConfig{
		Level:      level,
		JSONOutput: cfg.LogJSON,
		Output:     cmd.ErrOrStderr(),
	})

	return &settings{cfg: cfg, configPath: configPath, logger: logger}, nil
}

// effectiveConfigPath returns the highest-priority config file that exists.
func effectiveConfigPath() string {
	for _, path := range []string{config.ProjectConfigFilePath(), config.GlobalConfigFilePath()} {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func (s *settings) simOptions() simulate.Options {
	return simulate.Options{
		Entry:      s.cfg.EntryFunction,
		LabelWidth: s.cfg.LabelWidth,
		Logger:     s.logger,
	}
}

// openCache returns the analysis cache, or nil when caching is off.
func (s *settings) openCache(cmd *cobra.Command) *cache.AnalysisCache {
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache || !s.cfg.CacheEnabled {
		return nil
	}
	return cache.Open(s.cfg.CacheDir, cache.Options{
		MaxSize:  s.cfg.CacheMaxEntries,
		MaxBytes: s.cfg.CacheMaxBytes,
	}, s.logger)
}

// analyzeSource runs the simulation through c when it is non-nil.
func (s *settings) analyzeSource(c *cache.AnalysisCache, path string, src []byte) (*simulate.Result, error) {
	if c != nil {
		return c.Analyze(path, src, s.simOptions())
	}
	return simulate.AnalyzeSource(src, s.simOptions())
}

func (s *settings) saveCache(c *cache.AnalysisCache) {
	if c == nil {
		return
	}
	if err := c.Save(); err != nil {
		s.logger.Warn("saving analysis cache failed", "path", c.Path(), "error", err)
		return
	}
	stats := c.Stats()
	s.logger.Debug("analysis cache saved", "path", c.Path(), "entries", stats.Length, "hits", stats.HitCount, "misses", stats.MissCount)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// readPythonFile checks that path is a Python file and returns its source.
func readPythonFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, expected a file: %s", path)
	}
	if !isPythonFile(path) {
		return nil, fmt.Errorf("unsupported file type: %s (only .py files supported)", path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return src, nil
}

// isPythonFile checks if the file has a Python source extension.
func isPythonFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".py" || ext == ".pyw"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Config file path (default: ./.pyflow/config.yaml or ~/.pyflow/config.yaml)")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose logging")
	RootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")
}
