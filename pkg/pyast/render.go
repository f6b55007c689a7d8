package pyast

import (
	"strings"
	"unicode/utf8"
)

// Render returns a single-line textual form of a node for labels.
func Render(n Node) string {
	if n == nil {
		return ""
	}
	return strings.Join(strings.Fields(n.Source()), " ")
}

// Trim shortens s to at most width runes, marking the cut with "...".
// A width below 4 disables trimming.
func Trim(s string, width int) string {
	if width < 4 || utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// CalleeName returns the plain identifier a call targets, or "" when the
// callee is any other expression.
func CalleeName(c *Call) string {
	if name, ok := c.Func.(*Name); ok {
		return name.ID
	}
	return ""
}
