package render

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/pyflow/pkg/flow"
)

// loopGraph is entry → loop ⇄ body, loop → exit → end, plus one node that
// is not reachable from entry.
func loopGraph() (*flow.Graph, flow.NodeID) {
	g := flow.NewGraph()
	entry := g.NewNode(flow.KindEntry, "Program Start", nil)
	loop := g.NewNode(flow.KindLoopStart, "for x in xs", nil)
	body := g.NewNode(flow.KindCall, "print", nil)
	exit := g.NewNode(flow.KindLoopEnd, "End Loop", nil)
	end := g.NewNode(flow.KindEnd, "Program Exit", nil)
	g.NewNode(flow.KindFunction, "orphan", nil)

	g.AddEdge(entry, loop)
	g.AddEdge(loop, body)
	g.AddEdge(body, loop)
	g.AddEdge(loop, exit)
	g.AddEdge(exit, end)
	return g, entry
}

func TestDOTEmitsReachableNodesAndEdges(t *testing.T) {
	g, entry := loopGraph()
	out := DOT(g, entry, Options{RankDir: "LR", Title: "prog.py"})

	assert.True(t, strings.HasPrefix(out, "digraph"))
	assert.Contains(t, out, `rankdir="LR"`)
	assert.Contains(t, out, `label="prog.py"`)
	assert.Contains(t, out, `label="for x in xs"`)
	assert.Contains(t, out, `shape="Msquare"`)
	assert.Contains(t, out, `fillcolor="lightpink"`)
	assert.NotContains(t, out, "orphan", "unreachable nodes are not rendered")

	assert.Equal(t, 5, strings.Count(out, "->"), "one edge per parent→child pair, back edge included")
	assert.Equal(t, 5, strings.Count(out, `style="filled"`))
}

func TestDOTDefaultsToTopToBottom(t *testing.T) {
	g, entry := loopGraph()
	assert.Contains(t, DOT(g, entry, Options{}), `rankdir="TB"`)
}

func TestMermaid(t *testing.T) {
	g, entry := loopGraph()
	out := Mermaid(g, entry, Options{RankDir: "LR"})

	assert.True(t, strings.HasPrefix(out, "flowchart LR"))
	assert.Contains(t, out, `"Program Start"`)
	assert.Contains(t, out, "fill:#ffb6c1")
	assert.Equal(t, 5, strings.Count(out, "-->"))
}

func TestStyleFor(t *testing.T) {
	for _, kind := range flow.Kinds {
		_, ok := Styles[kind]
		assert.True(t, ok, "missing style for %s", kind)
	}
	assert.Equal(t, "diamond", StyleFor(flow.KindCondition).Shape)
	assert.Equal(t, "box", StyleFor(flow.Kind("OTHER")).Shape)
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		dir, input, format, want string
	}{
		{"output", "src/prog.py", FormatPNG, filepath.Join("output", "prog.png")},
		{"out", "app.py", FormatMermaid, filepath.Join("out", "app.mmd")},
		{"", "noext", FormatDOT, "noext.dot"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputPath(tt.dir, tt.input, tt.format))
	}
}

func TestWriteTextFormats(t *testing.T) {
	g, entry := loopGraph()
	dir := t.TempDir()

	dotPath := filepath.Join(dir, "nested", "prog.dot")
	require.NoError(t, Write(context.Background(), g, entry, dotPath, Options{Format: FormatDOT}))
	data, err := os.ReadFile(dotPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph")

	mmdPath := filepath.Join(dir, "prog.mmd")
	require.NoError(t, Write(context.Background(), g, entry, mmdPath, Options{Format: FormatMermaid}))
	data, err = os.ReadFile(mmdPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "flowchart")
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	g, entry := loopGraph()
	err := Write(context.Background(), g, entry, filepath.Join(t.TempDir(), "x.gif"), Options{Format: "gif"})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.False(t, SupportedFormat("gif"))
	assert.True(t, SupportedFormat(FormatSVG))
}

func TestWriteImageMissingBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.png")
	err := WriteImage(context.Background(), "digraph {}", path, FormatPNG, "pyflow-no-such-graphviz")
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteImageWithGraphviz(t *testing.T) {
	if _, err := exec.LookPath("dot"); err != nil {
		t.Skip("graphviz not installed")
	}
	g, entry := loopGraph()
	path := filepath.Join(t.TempDir(), "prog.svg")

	require.NoError(t, Write(context.Background(), g, entry, path, Options{Format: FormatSVG}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}
