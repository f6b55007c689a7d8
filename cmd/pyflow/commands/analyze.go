package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/pyflow/pkg/render"
	"github.com/l3aro/pyflow/pkg/simulate"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.py>",
	Short: "Simulate a Python file and render its flow graph",
	Long: `Simulates the program from its entry function (main by default) and renders
the execution-flow graph to <output_dir>/<basename>.<format>.

Images (png, svg, pdf) are produced by the Graphviz dot binary; dot and
mermaid output are written directly.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

// analyzeOutput is the --json document.
type analyzeOutput struct {
	File   string            `json:"file"`
	Output string            `json:"output"`
	Format string            `json:"format"`
	Result simulate.Snapshot `json:"result"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	cfg := s.cfg

	if format, _ := cmd.Flags().GetString("format"); format != "" {
		cfg.Format = format
	}
	if dotOnly, _ := cmd.Flags().GetBool("dot-only"); dotOnly {
		cfg.Format = render.FormatDOT
	}
	if outDir, _ := cmd.Flags().GetString("output"); outDir != "" {
		cfg.OutputDir = outDir
	}
	if !render.SupportedFormat(cfg.Format) {
		return fmt.Errorf("%w: %q (must be one of %v)", render.ErrUnsupportedFormat, cfg.Format, render.Formats)
	}

	path := args[0]
	src, err := readPythonFile(path)
	if err != nil {
		return err
	}

	c := s.openCache(cmd)
	res, err := s.analyzeSource(c, path, src)
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", path, err)
	}
	s.saveCache(c)

	outPath := render.OutputPath(cfg.OutputDir, path, cfg.Format)
	title, _ := cmd.Flags().GetString("title")
	opts := render.Options{
		Format:  cfg.Format,
		RankDir: cfg.RankDir,
		Title:   title,
		Binary:  cfg.DotBinary,
	}
	if err := render.Write(commandContext(cmd), res.Graph, res.Entry, outPath, opts); err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	s.logger.Debug("rendered flow graph", "file", path, "output", outPath, "nodes", res.Graph.Len())

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		data, err := json.MarshalIndent(analyzeOutput{
			File:   path,
			Output: outPath,
			Format: cfg.Format,
			Result: res.Snapshot(),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d nodes, %d edges)\n",
		successStyle.Render("wrote"), outPath, res.Graph.Len(), res.Graph.EdgeCount())
	return nil
}

func init() {
	analyzeCmd.Flags().StringP("output", "o", "", "Output directory (overrides output_dir)")
	analyzeCmd.Flags().StringP("format", "f", "", "Output format: png, svg, pdf, dot or mermaid")
	analyzeCmd.Flags().Bool("dot-only", false, "Write DOT source without running Graphviz")
	analyzeCmd.Flags().BoolP("json", "j", false, "Print the simulation result as JSON")
	analyzeCmd.Flags().Bool("no-cache", false, "Skip the analysis cache")
	analyzeCmd.Flags().StringP("entry", "e", "", "Entry function (overrides entry_function)")
	analyzeCmd.Flags().String("title", "", "Graph title")
	RootCmd.AddCommand(analyzeCmd)
}
