package defs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/pyflow/pkg/pyast"
)

func collect(t *testing.T, code string) *Table {
	t.Helper()
	mod, err := pyast.Parse([]byte(code))
	require.NoError(t, err)
	return Collect(mod)
}

func TestCollectFunctionsAndMethods(t *testing.T) {
	table := collect(t, `
def main():
    def nested():
        pass
    nested()

class Animal:
    def __init__(self):
        pass
    def speak(self):
        pass
`)
	for _, name := range []string{"main", "nested", "__init__", "speak"} {
		_, ok := table.Function(name)
		assert.True(t, ok, "expected function %s", name)
	}
	assert.Equal(t, []string{"main", "nested", "__init__", "speak"}, table.FunctionNames())
	assert.Equal(t, []string{"Animal"}, table.ClassNames())
	assert.True(t, table.IsClass("Animal"))
	assert.False(t, table.IsClass("main"))
}

func TestCollectLaterDefinitionWins(t *testing.T) {
	table := collect(t, `
def helper():
    first()

def helper():
    second()
`)
	fn, ok := table.Function("helper")
	require.True(t, ok)
	require.Len(t, fn.Body, 1)
	assert.Equal(t, "second()", pyast.Render(fn.Body[0]))
	assert.Equal(t, []string{"helper"}, table.FunctionNames())
}

func TestCollectNestedDefinitionWinsCollision(t *testing.T) {
	table := collect(t, `
class Worker:
    def run(self):
        method_body()

def run():
    toplevel_body()
`)
	fn, ok := table.Function("run")
	require.True(t, ok)
	require.Len(t, fn.Body, 1)
	assert.Equal(t, "method_body()", pyast.Render(fn.Body[0]), "the method is visited after the top-level function")
}

func TestClassBases(t *testing.T) {
	table := collect(t, `
class Base:
    pass

class Derived(Base, Mixin):
    pass

class Dynamic(mod.Base):
    pass
`)
	derived, ok := table.Class("Derived")
	require.True(t, ok)
	assert.Equal(t, []string{"Base", "Mixin"}, derived.Bases)
	first, ok := derived.FirstBase()
	assert.True(t, ok)
	assert.Equal(t, "Base", first)

	dynamic, _ := table.Class("Dynamic")
	assert.Equal(t, []string{""}, dynamic.Bases)
	_, ok = dynamic.FirstBase()
	assert.False(t, ok, "non-identifier bases are not followed")

	base, _ := table.Class("Base")
	_, ok = base.FirstBase()
	assert.False(t, ok)
}

func TestMethodLookup(t *testing.T) {
	table := collect(t, `
class Dog:
    def __init__(self):
        bark()
    def run(self):
        pass
`)
	ctor, ok := table.Method("Dog", "__init__")
	require.True(t, ok)
	assert.Equal(t, "__init__", ctor.Name)

	_, ok = table.Method("Dog", "fly")
	assert.False(t, ok)
	_, ok = table.Method("Cat", "__init__")
	assert.False(t, ok)
}

func TestInheritanceChain(t *testing.T) {
	table := collect(t, `
class A:
    pass
class B(A):
    pass
class C(B, Other):
    pass
class Loop1(Loop2):
    pass
class Loop2(Loop1):
    pass
class Orphan(Missing):
    pass
`)
	tests := []struct {
		class string
		want  []string
	}{
		{"C", []string{"C", "B", "A"}},
		{"A", []string{"A"}},
		{"Loop1", []string{"Loop1", "Loop2"}},
		{"Orphan", []string{"Orphan"}},
		{"Unknown", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, table.InheritanceChain(tt.class), tt.class)
	}
}

func TestCollectEmpty(t *testing.T) {
	table := collect(t, "x = 1\n")
	assert.True(t, table.Empty())
	assert.Empty(t, table.FunctionNames())

	assert.True(t, Collect(nil).Empty())
}
