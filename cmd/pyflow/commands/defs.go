package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/pyflow/pkg/defs"
	"github.com/l3aro/pyflow/pkg/pyast"
)

// defsCmd represents the defs command
var defsCmd = &cobra.Command{
	Use:   "defs <file.py>",
	Short: "List the functions and classes of a Python file",
	Long: `Prints the definition table the simulator resolves calls against. Names
share one namespace: methods and nested functions are listed next to
top-level functions, and a later definition replaces an earlier one.`,
	Args: cobra.ExactArgs(1),
	RunE: runDefs,
}

type functionInfo struct {
	Name   string `json:"name"`
	Params string `json:"params"`
	Line   int    `json:"line"`
	Async  bool   `json:"async,omitempty"`
}

type classInfo struct {
	Name    string   `json:"name"`
	Bases   []string `json:"bases"`
	Chain   []string `json:"chain"`
	Methods []string `json:"methods"`
	Line    int      `json:"line"`
}

type defsOutput struct {
	File      string         `json:"file"`
	Functions []functionInfo `json:"functions"`
	Classes   []classInfo    `json:"classes"`
}

func runDefs(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := readPythonFile(path)
	if err != nil {
		return err
	}
	mod, err := pyast.Parse(src)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	out := describeDefs(path, defs.Collect(mod))

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	printDefs(cmd.OutOrStdout(), out)
	return nil
}

func describeDefs(path string, table *defs.Table) defsOutput {
	out := defsOutput{File: path, Functions: []functionInfo{}, Classes: []classInfo{}}

	for _, name := range table.SortedFunctionNames() {
		fn, _ := table.Function(name)
		out.Functions = append(out.Functions, functionInfo{
			Name:   name,
			Params: fn.Params,
			Line:   fn.Position().Line,
			Async:  fn.Async,
		})
	}

	for _, name := range table.ClassNames() {
		c, _ := table.Class(name)
		info := classInfo{
			Name:    name,
			Bases:   c.Bases,
			Chain:   table.InheritanceChain(name),
			Methods: []string{},
			Line:    c.Def.Position().Line,
		}
		for _, stmt := range c.Def.Body {
			if fn, ok := stmt.(*pyast.FunctionDef); ok {
				info.Methods = append(info.Methods, fn.Name)
			}
		}
		out.Classes = append(out.Classes, info)
	}
	return out
}

func printDefs(w io.Writer, out defsOutput) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Definitions in %s", out.File)))

	fmt.Fprintln(w)
	fmt.Fprintln(w, sectionHeaderStyle.Render(fmt.Sprintf("Functions (%d)", len(out.Functions))))
	for _, fn := range out.Functions {
		prefix := "def"
		if fn.Async {
			prefix = "async def"
		}
		fmt.Fprintf(w, "  %s %s%s %s\n",
			dimStyle.Render(prefix),
			nameStyle.Render(fn.Name),
			fn.Params,
			dimStyle.Render(fmt.Sprintf("line %d", fn.Line)))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, sectionHeaderStyle.Render(fmt.Sprintf("Classes (%d)", len(out.Classes))))
	for _, c := range out.Classes {
		bases := ""
		if len(c.Bases) > 0 {
			bases = "(" + strings.Join(c.Bases, ", ") + ")"
		}
		fmt.Fprintf(w, "  %s %s%s %s\n",
			dimStyle.Render("class"),
			nameStyle.Render(c.Name),
			bases,
			dimStyle.Render(fmt.Sprintf("line %d", c.Line)))
		if len(c.Chain) > 1 {
			fmt.Fprintf(w, "    chain: %s\n", strings.Join(c.Chain, " -> "))
		}
		if len(c.Methods) > 0 {
			fmt.Fprintf(w, "    methods: %s\n", strings.Join(c.Methods, ", "))
		}
	}
}

func init() {
	defsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(defsCmd)
}
