package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/l3aro/pyflow/internal/config"
	"github.com/l3aro/pyflow/internal/log"
	"github.com/l3aro/pyflow/internal/scanner"
	"github.com/l3aro/pyflow/pkg/dirty"
	"github.com/l3aro/pyflow/pkg/render"
	"github.com/l3aro/pyflow/pkg/simulate"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Analyze every Python file under a directory",
	Long: `Scans the directory for Python files (honoring .pyflowignore patterns and
the default excludes), simulates each one and renders its flow graph under
the output directory, mirroring the source tree.

Files without the entry function are reported as skipped. Any other
failure makes the command exit non-zero after all files were processed.

With --changed, files whose source and render settings match their last
successful render are reported as unchanged and left alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

// Batch file outcomes.
const (
	batchOK        = "ok"
	batchUnchanged = "unchanged"
	batchSkipped   = "skipped"
	batchFailed    = "failed"
)

type batchResult struct {
	File   string `json:"file"`
	Output string `json:"output,omitempty"`
	Status string `json:"status"`
	Nodes  int    `json:"nodes,omitempty"`
	Error  string `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	cfg := s.cfg

	if format, _ := cmd.Flags().GetString("format"); format != "" {
		cfg.Format = format
	}
	if outDir, _ := cmd.Flags().GetString("output"); outDir != "" {
		cfg.OutputDir = outDir
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.MaxWorkers = workers
	}
	if !render.SupportedFormat(cfg.Format) {
		return fmt.Errorf("%w: %q (must be one of %v)", render.ErrUnsupportedFormat, cfg.Format, render.Formats)
	}

	root := args[0]
	files, err := scanner.Scan(root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No Python files found in %s\n", root)
		return nil
	}
	s.logger.Info("batch analysis started", "root", root, "files", len(files), "workers", cfg.MaxWorkers)

	c := s.openCache(cmd)
	var manifest *dirty.Tracker
	if changed, _ := cmd.Flags().GetBool("changed"); changed {
		if manifest, err = dirty.Open(manifestDir(cfg)); err != nil {
			return err
		}
	}
	opts := render.Options{Format: cfg.Format, RankDir: cfg.RankDir, Binary: cfg.DotBinary}

	spinner := log.NewProgressSpinner(fmt.Sprintf("Analyzing %d files...", len(files)))
	spinner.Start()

	results := make([]batchResult, len(files))
	var done atomic.Int64

	g, ctx := errgroup.WithContext(commandContext(cmd))
	g.SetLimit(cfg.MaxWorkers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = batchResult{File: f.Path}
			outDir := filepath.Join(cfg.OutputDir, filepath.Dir(filepath.FromSlash(f.Path)))
			outPath := render.OutputPath(outDir, f.Path, cfg.Format)

			src, err := os.ReadFile(f.FullPath)
			if err != nil {
				results[i].fail(fmt.Errorf("reading file %s: %w", f.Path, err))
				return nil
			}
			fingerprint := dirty.Fingerprint(src, cfg.EntryFunction, strconv.Itoa(cfg.LabelWidth), cfg.Format, cfg.RankDir, outPath)
			if manifest != nil && !manifest.IsDirty(f.FullPath, fingerprint) {
				results[i].Status = batchUnchanged
				results[i].Output = outPath
				return nil
			}
			res, err := s.analyzeSource(c, f.Path, src)
			if err != nil {
				if errors.Is(err, simulate.ErrEntryPointMissing) {
					results[i].Status = batchSkipped
					results[i].Error = err.Error()
				} else {
					results[i].fail(err)
				}
				return nil
			}

			fileOpts := opts
			fileOpts.Title = f.Path
			if err := render.Write(ctx, res.Graph, res.Entry, outPath, fileOpts); err != nil {
				results[i].fail(fmt.Errorf("rendering %s: %w", f.Path, err))
				return nil
			}
			if manifest != nil {
				manifest.MarkClean(f.FullPath, fingerprint, outPath)
			}

			results[i].Status = batchOK
			results[i].Output = outPath
			results[i].Nodes = res.Graph.Len()
			spinner.Message(fmt.Sprintf("Analyzed %d/%d files", done.Add(1), len(files)))
			return nil
		})
	}
	err = g.Wait()
	spinner.Stop()
	s.saveCache(c)
	if manifest != nil {
		if serr := manifest.Save(); serr != nil {
			s.logger.Warn("saving render manifest failed", "path", manifest.Path(), "error", serr)
		}
	}
	if err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Status == batchFailed {
			failed++
			s.logger.Error("analysis failed", "file", r.File, "error", r.Error)
		}
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		printBatch(cmd.OutOrStdout(), results)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

func (r *batchResult) fail(err error) {
	r.Status = batchFailed
	r.Error = err.Error()
}

func printBatch(w io.Writer, results []batchResult) {
	counts := map[string]int{}
	for _, r := range results {
		counts[r.Status]++
		switch r.Status {
		case batchOK:
			fmt.Fprintf(w, "  %s %s -> %s\n", successStyle.Render("✓"), r.File, r.Output)
		case batchUnchanged:
			fmt.Fprintf(w, "  %s %s %s\n", dimStyle.Render("="), r.File, dimStyle.Render("(unchanged)"))
		case batchSkipped:
			fmt.Fprintf(w, "  %s %s %s\n", warningStyle.Render("-"), r.File, dimStyle.Render("(no entry function)"))
		default:
			fmt.Fprintf(w, "  %s %s: %s\n", errorStyle.Render("✗"), r.File, r.Error)
		}
	}
	fmt.Fprintf(w, "\n%s %d analyzed, %d unchanged, %d skipped, %d failed\n",
		headerStyle.Render("Summary:"), counts[batchOK], counts[batchUnchanged], counts[batchSkipped], counts[batchFailed])
}

// manifestDir is where the render manifest lives, beside the analysis cache.
func manifestDir(cfg *config.Config) string {
	if cfg.CacheDir != "" {
		return cfg.CacheDir
	}
	return filepath.Join(config.Dir, "cache")
}

func init() {
	batchCmd.Flags().StringP("output", "o", "", "Output directory (overrides output_dir)")
	batchCmd.Flags().StringP("format", "f", "", "Output format: png, svg, pdf, dot or mermaid")
	batchCmd.Flags().IntP("workers", "w", 0, "Concurrent files (overrides max_workers)")
	batchCmd.Flags().BoolP("json", "j", false, "Output results as JSON")
	batchCmd.Flags().Bool("no-cache", false, "Skip the analysis cache")
	batchCmd.Flags().Bool("changed", false, "Only render files changed since their last render")
	batchCmd.Flags().StringP("entry", "e", "", "Entry function (overrides entry_function)")
	RootCmd.AddCommand(batchCmd)
}
