package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/l3aro/pyflow/pkg/simulate"
)

// traceCmd represents the trace command
var traceCmd = &cobra.Command{
	Use:   "trace <file.py>",
	Short: "Print the visit log of a simulation",
	Long: `Simulates the program and prints every callable, attribute and loop marker
in the order the simulation reached it. Nothing is rendered.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrace,
}

func runTrace(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
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

	kinds, err := parseKinds(cmd)
	if err != nil {
		return err
	}
	entries := filterLog(res.Log, kinds)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	printTrace(cmd.OutOrStdout(), path, s.cfg.EntryFunction, entries)
	return nil
}

var logKinds = []simulate.LogKind{
	simulate.LogCall,
	simulate.LogRecursion,
	simulate.LogAttribute,
	simulate.LogConstruct,
	simulate.LogLambda,
	simulate.LogLoop,
}

func parseKinds(cmd *cobra.Command) ([]simulate.LogKind, error) {
	names, _ := cmd.Flags().GetStringSlice("kind")
	kinds := make([]simulate.LogKind, 0, len(names))
	for _, name := range names {
		kind := simulate.LogKind(name)
		if !containsLogKind(logKinds, kind) {
			return nil, fmt.Errorf("unknown log kind %q (must be one of %v)", name, logKinds)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func containsLogKind(kinds []simulate.LogKind, kind simulate.LogKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// filterLog keeps the entries of the given kinds; no kinds keeps everything.
func filterLog(entries []simulate.LogEntry, kinds []simulate.LogKind) []simulate.LogEntry {
	if len(kinds) == 0 {
		return entries
	}
	out := make([]simulate.LogEntry, 0, len(entries))
	for _, e := range entries {
		if containsLogKind(kinds, e.Kind) {
			out = append(out, e)
		}
	}
	return out
}

func printTrace(w io.Writer, path, entry string, entries []simulate.LogEntry) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Visit log for %s", path)))
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("entry %s, %d steps", entry, len(entries))))
	fmt.Fprintln(w)

	depth := 0
	for i, e := range entries {
		if e.Kind == simulate.LogLoop && e.Name == simulate.EndLoop && depth > 0 {
			depth--
		}
		indent := ""
		for j := 0; j < depth; j++ {
			indent += "  "
		}
		fmt.Fprintf(w, "%s  %s%s %s\n",
			indexStyle.Render(fmt.Sprintf("%d.", i+1)),
			indent,
			nameStyle.Render(e.Name),
			kindStyle(e.Kind).Render("["+string(e.Kind)+"]"))
		if e.Kind == simulate.LogLoop && e.Name == simulate.StartLoop {
			depth++
		}
	}
}

func init() {
	traceCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	traceCmd.Flags().StringSlice("kind", nil, "Only show these kinds (call, recursion, attribute, construct, lambda, loop)")
	traceCmd.Flags().StringP("entry", "e", "", "Entry function (overrides entry_function)")
	traceCmd.Flags().Bool("no-cache", false, "Skip the analysis cache")
	RootCmd.AddCommand(traceCmd)
}
