// Package defs collects the function and class definitions of a program
// into a single global namespace before simulation begins.
package defs

import (
	"sort"

	"github.com/l3aro/pyflow/pkg/pyast"
)

// Class is a collected class definition.
type Class struct {
	Def *pyast.ClassDef
	// Bases holds one entry per declared positional base in order. A base
	// that is not a plain identifier is recorded as "".
	Bases []string
}

// FirstBase returns the first declared base if it is a plain identifier.
func (c *Class) FirstBase() (string, bool) {
	if c == nil || len(c.Bases) == 0 || c.Bases[0] == "" {
		return "", false
	}
	return c.Bases[0], true
}

// Table indexes definitions by their literal name. Names are not scoped:
// methods, nested functions and top-level functions share one namespace.
// Definitions are visited level by level, so on a collision the more deeply
// nested definition wins, and within a level the later one wins. The table is read-only once
// Collect returns and may be shared between simulation runs.
type Table struct {
	Functions map[string]*pyast.FunctionDef
	Classes   map[string]*Class

	functionOrder []string
	classOrder    []string
}

// Collect walks the whole module once, breadth first, and records every
// definition.
func Collect(mod *pyast.Module) *Table {
	t := &Table{
		Functions: make(map[string]*pyast.FunctionDef),
		Classes:   make(map[string]*Class),
	}
	if mod == nil {
		return t
	}

	pyast.WalkBreadthFirst(mod, func(n pyast.Node) bool {
		switch d := n.(type) {
		case *pyast.FunctionDef:
			if _, seen := t.Functions[d.Name]; !seen {
				t.functionOrder = append(t.functionOrder, d.Name)
			}
			t.Functions[d.Name] = d
		case *pyast.ClassDef:
			if _, seen := t.Classes[d.Name]; !seen {
				t.classOrder = append(t.classOrder, d.Name)
			}
			t.Classes[d.Name] = &Class{Def: d, Bases: baseNames(d)}
		}
		return true
	})
	return t
}

func baseNames(d *pyast.ClassDef) []string {
	names := make([]string, 0, len(d.Bases))
	for _, b := range d.Bases {
		if name, ok := b.(*pyast.Name); ok {
			names = append(names, name.ID)
		} else {
			names = append(names, "")
		}
	}
	return names
}

// Function looks up a function definition by name.
func (t *Table) Function(name string) (*pyast.FunctionDef, bool) {
	fn, ok := t.Functions[name]
	return fn, ok
}

// Class looks up a class definition by name.
func (t *Table) Class(name string) (*Class, bool) {
	c, ok := t.Classes[name]
	return c, ok
}

// IsClass reports whether name is a known class.
func (t *Table) IsClass(name string) bool {
	_, ok := t.Classes[name]
	return ok
}

// Method finds a method defined directly in the body of class.
func (t *Table) Method(class, name string) (*pyast.FunctionDef, bool) {
	c, ok := t.Classes[class]
	if !ok {
		return nil, false
	}
	for _, stmt := range c.Def.Body {
		if fn, ok := stmt.(*pyast.FunctionDef); ok && fn.Name == name {
			return fn, true
		}
	}
	return nil, false
}

// InheritanceChain returns class followed by its first-base ancestors,
// derived first. Only the first declared base is followed. Walking stops at
// a class without a plain-identifier base, at an unknown base, or when a
// class repeats.
func (t *Table) InheritanceChain(class string) []string {
	var chain []string
	seen := make(map[string]bool)
	for name := class; name != "" && !seen[name]; {
		c, ok := t.Classes[name]
		if !ok {
			break
		}
		seen[name] = true
		chain = append(chain, name)
		next, ok := c.FirstBase()
		if !ok {
			break
		}
		name = next
	}
	return chain
}

// FunctionNames returns function names in first-visit order.
func (t *Table) FunctionNames() []string {
	return append([]string(nil), t.functionOrder...)
}

// ClassNames returns class names in first-visit order.
func (t *Table) ClassNames() []string {
	return append([]string(nil), t.classOrder...)
}

// SortedFunctionNames returns function names alphabetically.
func (t *Table) SortedFunctionNames() []string {
	names := t.FunctionNames()
	sort.Strings(names)
	return names
}

// Empty reports whether nothing was collected.
func (t *Table) Empty() bool {
	return len(t.Functions) == 0 && len(t.Classes) == 0
}
