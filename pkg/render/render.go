// Package render turns a flow graph into Graphviz DOT, Mermaid or an image
// produced by the Graphviz dot binary.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/emicklei/dot"

	"github.com/l3aro/pyflow/pkg/flow"
)

// Output formats.
const (
	FormatPNG     = "png"
	FormatSVG     = "svg"
	FormatPDF     = "pdf"
	FormatDOT     = "dot"
	FormatMermaid = "mermaid"
)

// Formats lists every supported output format.
var Formats = []string{FormatPNG, FormatSVG, FormatPDF, FormatDOT, FormatMermaid}

// RankDirs lists the accepted graph directions.
var RankDirs = []string{"TB", "LR", "BT", "RL"}

// ErrUnsupportedFormat is returned for a format outside Formats.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Options controls rendering.
type Options struct {
	Format  string
	RankDir string
	Title   string
	Binary  string // Graphviz executable, "dot" when empty
}

func (o Options) rankDir() string {
	if o.RankDir == "" {
		return "TB"
	}
	return o.RankDir
}

func (o Options) binary() string {
	if o.Binary == "" {
		return "dot"
	}
	return o.Binary
}

// SupportedFormat reports whether format can be rendered.
func SupportedFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Extension returns the file extension written for format.
func Extension(format string) string {
	if format == FormatMermaid {
		return "mmd"
	}
	return format
}

// OutputPath derives the output file for input inside dir.
func OutputPath(dir, input, format string) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, name+"."+Extension(format))
}

// reachable returns the nodes reachable from entry in depth-first order.
func reachable(g *flow.Graph, entry flow.NodeID) []*flow.Node {
	var nodes []*flow.Node
	g.Walk(entry, func(n *flow.Node) bool {
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

// build emits one visual node per reachable flow node and one edge per
// parent→child relationship.
func build(g *flow.Graph, entry flow.NodeID, opts Options, mermaid bool) *dot.Graph {
	out := dot.NewGraph(dot.Directed)
	if !mermaid {
		out.Attr("rankdir", opts.rankDir())
		if opts.Title != "" {
			out.Attr("label", opts.Title)
			out.Attr("labelloc", "t")
		}
	}

	nodes := reachable(g, entry)
	visual := make(map[flow.NodeID]dot.Node, len(nodes))
	for _, n := range nodes {
		style := StyleFor(n.Kind)
		v := out.Node(n.Key()).Label(n.Label)
		if mermaid {
			v.Attr("shape", style.mermaidShape)
			v.Attr("style", "fill:"+style.Hex)
		} else {
			v.Attr("shape", style.Shape)
			v.Attr("style", "filled")
			v.Attr("fillcolor", style.Fill)
		}
		visual[n.ID] = v
	}

	for _, n := range nodes {
		for _, child := range n.Children() {
			out.Edge(visual[n.ID], visual[child])
		}
	}
	return out
}

// DOT renders the part of g reachable from entry as Graphviz source.
func DOT(g *flow.Graph, entry flow.NodeID, opts Options) string {
	return build(g, entry, opts, false).String()
}

// Mermaid renders the part of g reachable from entry as a Mermaid flowchart.
func Mermaid(g *flow.Graph, entry flow.NodeID, opts Options) string {
	orientation := dot.MermaidTopToBottom
	switch opts.rankDir() {
	case "LR":
		orientation = dot.MermaidLeftToRight
	case "BT":
		orientation = dot.MermaidBottomToTop
	case "RL":
		orientation = dot.MermaidRightToLeft
	}
	return dot.MermaidFlowchart(build(g, entry, opts, true), orientation)
}

// Write renders g to path in opts.Format.
func Write(ctx context.Context, g *flow.Graph, entry flow.NodeID, path string, opts Options) error {
	switch opts.Format {
	case FormatDOT:
		return WriteText(path, DOT(g, entry, opts))
	case FormatMermaid:
		return WriteText(path, Mermaid(g, entry, opts))
	case FormatPNG, FormatSVG, FormatPDF:
		return WriteImage(ctx, DOT(g, entry, opts), path, opts.Format, opts.binary())
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}
}

// WriteText writes rendered source to path, creating parent directories.
func WriteText(path, src string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteImage pipes DOT source through the Graphviz binary.
func WriteImage(ctx context.Context, src, path, format, binary string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, binary, "-T"+format, "-o", path)
	cmd.Stdin = strings.NewReader(src)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("running %s: %w: %s", binary, err, msg)
		}
		return fmt.Errorf("running %s: %w", binary, err)
	}
	return nil
}
