// Package simulate walks a Python program from its entry function without
// running it and builds an execution-flow graph.
//
// Calls to user-defined functions are expanded in place, class construction
// becomes the inheritance-ordered chain of constructors, conditionals fork
// and rejoin at a merge node, and loops close with a back edge to their
// header. A function already being expanded further up the stack is not
// expanded again, so recursion always terminates.
package simulate

import (
	"fmt"

	"github.com/l3aro/pyflow/internal/log"
	"github.com/l3aro/pyflow/pkg/defs"
	"github.com/l3aro/pyflow/pkg/flow"
	"github.com/l3aro/pyflow/pkg/pyast"
)

const (
	// DefaultEntry is the function simulation starts from.
	DefaultEntry = "main"
	// DefaultLabelWidth bounds condition and loop header labels.
	DefaultLabelWidth = 40

	entryLabel = "Program Start"
	endLabel   = "Program Exit"
)

// Options controls a simulation run.
type Options struct {
	Entry      string
	LabelWidth int
	Logger     log.Logger
}

func (o Options) withDefaults() Options {
	if o.Entry == "" {
		o.Entry = DefaultEntry
	}
	if o.LabelWidth == 0 {
		o.LabelWidth = DefaultLabelWidth
	}
	if o.Logger == nil {
		o.Logger = log.Nop()
	}
	return o
}

// LogKind tags what produced a visit log entry.
type LogKind string

const (
	LogCall      LogKind = "call"      // function expansion or unresolved call
	LogRecursion LogKind = "recursion" // re-reference of an in-flight function
	LogAttribute LogKind = "attribute"
	LogConstruct LogKind = "construct" // class instantiation
	LogLambda    LogKind = "lambda"
	LogLoop      LogKind = "loop" // Start Loop / End Loop markers
)

// Loop markers recorded in the visit log.
const (
	StartLoop = "Start Loop"
	EndLoop   = "End Loop"
)

// LogEntry is one step of the visit log.
type LogEntry struct {
	Name string  `json:"name" msgpack:"name"`
	Kind LogKind `json:"kind" msgpack:"kind"`
}

// Result is the outcome of a successful run.
type Result struct {
	Graph *flow.Graph
	Entry flow.NodeID
	End   flow.NodeID
	Log   []LogEntry
}

// Names returns the logged names in evaluation order, restricted to the
// given kinds. With no kinds every entry is returned.
func (r *Result) Names(kinds ...LogKind) []string {
	names := make([]string, 0, len(r.Log))
	for _, e := range r.Log {
		if len(kinds) == 0 || containsKind(kinds, e.Kind) {
			names = append(names, e.Name)
		}
	}
	return names
}

func containsKind(kinds []LogKind, k LogKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// Analyze simulates mod from its entry function. On error no partial result
// is returned.
func Analyze(mod *pyast.Module, opts Options) (*Result, error) {
	return AnalyzeDefs(defs.Collect(mod), opts)
}

// AnalyzeDefs simulates a program whose definitions are already collected.
// The table is only read, so one table may back several concurrent runs.
func AnalyzeDefs(table *defs.Table, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if _, ok := table.Function(opts.Entry); !ok {
		return nil, fmt.Errorf("function %q: %w", opts.Entry, ErrEntryPointMissing)
	}

	s := newState(table, opts)
	entry := s.emit(flow.KindEntry, entryLabel, nil)
	s.resolve(opts.Entry, nil)
	end := s.emit(flow.KindEnd, endLabel, nil)

	opts.Logger.Debug("simulation finished",
		"entry", opts.Entry,
		"nodes", s.graph.Len(),
		"edges", s.graph.EdgeCount(),
		"visits", len(s.visits))

	return &Result{
		Graph: s.graph,
		Entry: entry,
		End:   end,
		Log:   s.visits,
	}, nil
}

// AnalyzeSource parses and simulates Python source.
func AnalyzeSource(src []byte, opts Options) (*Result, error) {
	mod, err := pyast.Parse(src)
	if err != nil {
		return nil, err
	}
	return Analyze(mod, opts)
}

// AnalyzeFile parses and simulates a Python file.
func AnalyzeFile(path string, opts Options) (*Result, error) {
	mod, err := pyast.ParseFile(path)
	if err != nil {
		return nil, err
	}
	res, err := Analyze(mod, opts)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", path, err)
	}
	return res, nil
}
