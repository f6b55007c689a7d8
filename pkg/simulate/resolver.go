package simulate

import (
	"github.com/l3aro/pyflow/pkg/flow"
	"github.com/l3aro/pyflow/pkg/pyast"
)

const constructor = "__init__"

// resolve simulates a call to a plain name. Classes expand into their
// constructor chain, user functions into their bodies, and anything else
// becomes a CALL leaf.
func (s *state) resolve(name string, site pyast.Node) flow.NodeID {
	if s.defs.IsClass(name) {
		return s.construct(name, site)
	}
	fn, ok := s.defs.Function(name)
	if !ok {
		s.record(name, LogCall)
		return s.emit(flow.KindCall, name, site)
	}
	return s.expand(name, fn, site)
}

// expand emits a FUNCTION node and walks the body unless name is already
// being expanded anywhere up the stack, whichever branch led back to it.
// A nil fn is an activation without a body.
func (s *state) expand(name string, fn *pyast.FunctionDef, site pyast.Node) flow.NodeID {
	node := s.emit(flow.KindFunction, name, site)

	if s.inFlight[name] {
		s.record(name, LogRecursion)
		s.logger.Debug("recursive call not expanded", "function", name)
		return node
	}

	s.record(name, LogCall)
	s.inFlight[name] = true
	caller := s.activation
	s.activation = signature{name: name, ctx: s.ctx}
	defer func() {
		delete(s.inFlight, name)
		s.activation = caller
	}()

	if fn != nil {
		s.walkBody(fn.Body)
	}
	return node
}

// construct simulates instantiating class: the constructors of its
// first-base chain run from the root base down to class itself. A class
// without __init__ still gets an empty constructor activation.
func (s *state) construct(class string, site pyast.Node) flow.NodeID {
	s.record(class, LogConstruct)

	chain := s.defs.InheritanceChain(class)
	s.logger.Debug("constructing", "class", class, "chain", chain)

	last := flow.None
	for i := len(chain) - 1; i >= 0; i-- {
		name := chain[i] + "." + constructor
		if s.inFlight[name] {
			continue
		}
		ctor, _ := s.defs.Method(chain[i], constructor)
		last = s.expand(name, ctor, site)
	}

	if last == flow.None {
		return s.emit(flow.KindCall, class, site)
	}
	return last
}

// isSuperCall matches super(...) and super().method(...).
func isSuperCall(c *pyast.Call) bool {
	switch fn := c.Func.(type) {
	case *pyast.Name:
		return fn.ID == "super"
	case *pyast.Attribute:
		switch v := fn.Value.(type) {
		case *pyast.Name:
			return v.ID == "super"
		case *pyast.Call:
			return pyast.CalleeName(v) == "super"
		}
	}
	return false
}
