package render

import (
	"github.com/emicklei/dot"

	"github.com/l3aro/pyflow/pkg/flow"
)

// Style is the visual treatment of one node kind.
type Style struct {
	Shape string // Graphviz shape
	Fill  string // Graphviz color name
	Hex   string // same color for Mermaid

	mermaidShape interface{}
}

// Styles maps every node kind to its style.
var Styles = map[flow.Kind]Style{
	flow.KindEntry:     {Shape: "ellipse", Fill: "lightgreen", Hex: "#90ee90", mermaidShape: dot.MermaidShapeStadium},
	flow.KindFunction:  {Shape: "box", Fill: "lightblue", Hex: "#add8e6", mermaidShape: dot.MermaidShapeSubroutine},
	flow.KindCall:      {Shape: "box", Fill: "lightpink", Hex: "#ffb6c1", mermaidShape: dot.MermaidShapeRound},
	flow.KindCondition: {Shape: "diamond", Fill: "lightgray", Hex: "#d3d3d3", mermaidShape: dot.MermaidShapeRhombus},
	flow.KindMerge:     {Shape: "ellipse", Fill: "lightgray", Hex: "#d3d3d3", mermaidShape: dot.MermaidShapeCircle},
	flow.KindLoopStart: {Shape: "ellipse", Fill: "lightgray", Hex: "#d3d3d3", mermaidShape: dot.MermaidShapeAsymmetric},
	flow.KindLoopEnd:   {Shape: "Msquare", Fill: "white", Hex: "#ffffff", mermaidShape: dot.MermaidShapeTrapezoid},
	flow.KindEnd:       {Shape: "ellipse", Fill: "lightgreen", Hex: "#90ee90", mermaidShape: dot.MermaidShapeStadium},
}

var defaultStyle = Style{Shape: "box", Fill: "white", Hex: "#ffffff", mermaidShape: dot.MermaidShapeRound}

// StyleFor returns the style of kind, falling back to a plain box.
func StyleFor(kind flow.Kind) Style {
	if s, ok := Styles[kind]; ok {
		return s
	}
	return defaultStyle
}
