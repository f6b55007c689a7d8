package pyast

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, code string) *Module {
	t.Helper()
	mod, err := Parse([]byte(code))
	require.NoError(t, err)
	return mod
}

func TestParseFunctionAndClassDefinitions(t *testing.T) {
	mod := parse(t, `
class Base:
    pass

class Derived(Base, Mixin, metaclass=Meta):
    def __init__(self):
        super().__init__()

@decorator
def helper(a, b=2):
    return a

async def fetch():
    pass
`)
	require.Len(t, mod.Body, 4)

	base, ok := mod.Body[0].(*ClassDef)
	require.True(t, ok)
	assert.Equal(t, "Base", base.Name)
	assert.Empty(t, base.Bases)

	derived, ok := mod.Body[1].(*ClassDef)
	require.True(t, ok)
	assert.Equal(t, "Derived", derived.Name)
	require.Len(t, derived.Bases, 2, "metaclass keyword must not be a base")
	assert.Equal(t, "Base", derived.Bases[0].(*Name).ID)
	require.Len(t, derived.Body, 1)
	assert.Equal(t, "__init__", derived.Body[0].(*FunctionDef).Name)

	helper, ok := mod.Body[2].(*FunctionDef)
	require.True(t, ok, "decorated definitions lower to the definition itself")
	assert.Equal(t, "helper", helper.Name)
	assert.Equal(t, "(a, b=2)", helper.Params)

	fetch := mod.Body[3].(*FunctionDef)
	assert.True(t, fetch.Async)
}

func TestParseElifChainNestsInOrelse(t *testing.T) {
	mod := parse(t, `
if a:
    x()
elif b:
    y()
else:
    z()
`)
	require.Len(t, mod.Body, 1)
	outer := mod.Body[0].(*If)
	assert.Equal(t, "a", Render(outer.Test))
	require.Len(t, outer.Orelse, 1)

	inner, ok := outer.Orelse[0].(*If)
	require.True(t, ok)
	assert.Equal(t, "b", Render(inner.Test))
	require.Len(t, inner.Orelse, 1)
	assert.Equal(t, "z()", Render(inner.Orelse[0]))
}

func TestParseCallArguments(t *testing.T) {
	mod := parse(t, `sorted(data, *rest, key=lambda d: d.size, **opts)`)
	stmt := mod.Body[0].(*ExprStmt)
	call := stmt.Value.(*Call)

	assert.Equal(t, "sorted", CalleeName(call))
	require.Len(t, call.Args, 2)
	_, isStarred := call.Args[1].(*Starred)
	assert.True(t, isStarred)

	require.Len(t, call.Keywords, 2)
	assert.Equal(t, "key", call.Keywords[0].Name)
	lam, ok := call.Keywords[0].Value.(*Lambda)
	require.True(t, ok)
	assert.IsType(t, &Attribute{}, lam.Body)
	assert.Equal(t, "", call.Keywords[1].Name)
}

func TestParseAssignments(t *testing.T) {
	mod := parse(t, `
a = b = make()
total += step()
count: int = 0
label: str
`)
	require.Len(t, mod.Body, 4)

	chained := mod.Body[0].(*Assign)
	assert.Len(t, chained.Targets, 2)
	assert.IsType(t, &Call{}, chained.Value)

	aug := mod.Body[1].(*Assign)
	assert.Equal(t, "+=", aug.Op)
	assert.IsType(t, &Call{}, aug.Value)

	annotated := mod.Body[2].(*Assign)
	assert.IsType(t, &Constant{}, annotated.Value)

	bare := mod.Body[3].(*Assign)
	assert.Nil(t, bare.Value)
}

func TestParseComprehensions(t *testing.T) {
	mod := parse(t, `
xs = [f(x) for x in range(n) if ok(x)]
ds = {k: v(k) for k in keys}
gs = sum(g(y) for y in items)
`)
	list := mod.Body[0].(*Assign).Value.(*Comprehension)
	assert.Equal(t, ListComp, list.Kind)
	require.Len(t, list.Generators, 1)
	assert.Equal(t, "range(n)", Render(list.Generators[0].Iter))
	require.Len(t, list.Generators[0].Ifs, 1)
	assert.Equal(t, "f(x)", Render(list.Elt))

	dict := mod.Body[1].(*Assign).Value.(*Comprehension)
	assert.Equal(t, DictComp, dict.Kind)
	assert.Equal(t, "k", Render(dict.Elt))
	assert.Equal(t, "v(k)", Render(dict.Value))

	sum := mod.Body[2].(*Assign).Value.(*Call)
	require.Len(t, sum.Args, 1)
	gen, ok := sum.Args[0].(*Comprehension)
	require.True(t, ok)
	assert.Equal(t, GeneratorExpr, gen.Kind)
}

func TestParseFStringInterpolations(t *testing.T) {
	mod := parse(t, `print(f"value {compute(x)} and {y}")`)
	call := mod.Body[0].(*ExprStmt).Value.(*Call)
	require.Len(t, call.Args, 1)

	js, ok := call.Args[0].(*JoinedStr)
	require.True(t, ok)
	require.Len(t, js.Values, 2)
	assert.IsType(t, &Call{}, js.Values[0])
	assert.IsType(t, &Name{}, js.Values[1])

	plain := parse(t, `print("no interpolation")`)
	arg := plain.Body[0].(*ExprStmt).Value.(*Call).Args[0]
	assert.IsType(t, &Constant{}, arg)
}

func TestParseConditionalExpressionOrder(t *testing.T) {
	mod := parse(t, `v = big() if check() else small()`)
	ifexp := mod.Body[0].(*Assign).Value.(*IfExp)
	assert.Equal(t, "check()", Render(ifexp.Test))
	assert.Equal(t, "big()", Render(ifexp.Body))
	assert.Equal(t, "small()", Render(ifexp.Orelse))
}

func TestParseLoopsWithAndTry(t *testing.T) {
	mod := parse(t, `
for i, v in enumerate(xs):
    use(v)
else:
    done()
while running():
    step()
with open(p) as fh, lock:
    read(fh)
try:
    risky()
except ValueError as e:
    recover()
else:
    ok()
finally:
    cleanup()
`)
	require.Len(t, mod.Body, 4)

	loop := mod.Body[0].(*For)
	assert.Equal(t, "enumerate(xs)", Render(loop.Iter))
	assert.Len(t, loop.Body, 1)
	assert.Len(t, loop.Orelse, 1)

	while := mod.Body[1].(*While)
	assert.Equal(t, "running()", Render(while.Test))

	with := mod.Body[2].(*With)
	require.Len(t, with.Items, 2)
	assert.Equal(t, "open(p)", Render(with.Items[0]))

	try := mod.Body[3].(*Try)
	assert.Len(t, try.Body, 1)
	require.Len(t, try.Handlers, 1)
	assert.Equal(t, "ValueError", Render(try.Handlers[0].Type))
	assert.Len(t, try.Handlers[0].Body, 1)
	assert.Len(t, try.Orelse, 1)
	assert.Len(t, try.Finally, 1)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse([]byte("def broken(:\n    pass\n"))
	require.Error(t, err)

	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Pos.Line)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.py")
	require.NoError(t, os.WriteFile(path, []byte("def main():\n    pass\n"), 0644))

	mod, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, mod.Body, 1)

	_, err = ParseFile(filepath.Join(dir, "missing.py"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.py")
	require.NoError(t, os.WriteFile(bad, []byte("x = (\n"), 0644))
	_, err = ParseFile(bad)
	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, bad, se.Path)
}

func TestWalkVisitsNestedDefinitions(t *testing.T) {
	mod := parse(t, `
def outer():
    def inner():
        pass
    return [lambda: inner() for _ in range(2)]

class K:
    def method(self):
        pass
`)
	var names []string
	Walk(mod, func(n Node) bool {
		switch d := n.(type) {
		case *FunctionDef:
			names = append(names, d.Name)
		case *ClassDef:
			names = append(names, d.Name)
		}
		return true
	})
	assert.Equal(t, []string{"outer", "inner", "K", "method"}, names)

	calls := 0
	Walk(mod, func(n Node) bool {
		if _, ok := n.(*Call); ok {
			calls++
		}
		return true
	})
	assert.Equal(t, 2, calls, "inner() inside the lambda and range(2)")
}

func TestTrim(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a much longer condition", 10, "a much ..."},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Trim(tt.in, tt.width), tt.in)
	}
}

func TestRenderCollapsesWhitespace(t *testing.T) {
	mod := parse(t, "x = call(a,\n         b)\n")
	assert.Equal(t, "call(a, b)", Render(mod.Body[0].(*Assign).Value))
}
