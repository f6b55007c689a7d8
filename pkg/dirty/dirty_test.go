package dirty

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOutput(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("digraph {}"), 0644))
	return path
}

func TestFingerprint(t *testing.T) {
	src := []byte("def main():\n    pass\n")
	base := Fingerprint(src, "main", "40", "png")

	assert.Len(t, base, 32)
	assert.Equal(t, base, Fingerprint(src, "main", "40", "png"))
	assert.NotEqual(t, base, Fingerprint([]byte("def main():\n    run()\n"), "main", "40", "png"))
	assert.NotEqual(t, base, Fingerprint(src, "main", "40", "svg"))
	assert.NotEqual(t, Fingerprint(src, "ab", "c"), Fingerprint(src, "a", "bc"), "settings are separated")
}

func TestTracker_IsDirty(t *testing.T) {
	dir := t.TempDir()
	out := writeOutput(t, dir, "prog.dot")

	tests := []struct {
		name        string
		setup       func(*Tracker)
		fingerprint string
		dirty       bool
	}{
		{
			name:        "never rendered",
			setup:       func(*Tracker) {},
			fingerprint: "a",
			dirty:       true,
		},
		{
			name:        "same fingerprint",
			setup:       func(tr *Tracker) { tr.MarkClean("prog.py", "a", out) },
			fingerprint: "a",
			dirty:       false,
		},
		{
			name:        "changed fingerprint",
			setup:       func(tr *Tracker) { tr.MarkClean("prog.py", "a", out) },
			fingerprint: "b",
			dirty:       true,
		},
		{
			name:        "output deleted",
			setup:       func(tr *Tracker) { tr.MarkClean("prog.py", "a", filepath.Join(dir, "gone.dot")) },
			fingerprint: "a",
			dirty:       true,
		},
		{
			name: "removed",
			setup: func(tr *Tracker) {
				tr.MarkClean("prog.py", "a", out)
				tr.Remove("prog.py")
			},
			fingerprint: "a",
			dirty:       true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tracker := New(dir)
			tc.setup(tracker)
			assert.Equal(t, tc.dirty, tracker.IsDirty("prog.py", tc.fingerprint))
		})
	}
}

func TestTracker_PathsAreAbsolute(t *testing.T) {
	dir := t.TempDir()
	out := writeOutput(t, dir, "prog.dot")
	tracker := New(dir)

	abs, err := filepath.Abs("prog.py")
	require.NoError(t, err)
	tracker.MarkClean("prog.py", "a", out)

	assert.False(t, tracker.IsDirty(abs, "a"))
	got, ok := tracker.Output(abs)
	require.True(t, ok)
	assert.Equal(t, out, got)
}

func TestTracker_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	out := writeOutput(t, dir, "prog.dot")

	tracker := New(filepath.Join(dir, "cache"))
	tracker.MarkClean("b.py", "fp-b", out)
	tracker.MarkClean("a.py", "fp-a", out)
	require.NoError(t, tracker.Save())
	assert.FileExists(t, filepath.Join(dir, "cache", FileName))

	loaded, err := Open(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	assert.False(t, loaded.IsDirty("a.py", "fp-a"))
	assert.True(t, loaded.IsDirty("b.py", "fp-a"))
}

func TestTracker_SaveToIsSorted(t *testing.T) {
	dir := t.TempDir()
	tracker := New(dir)
	tracker.MarkClean("z.py", "z", "")
	tracker.MarkClean("a.py", "a", "")

	var buf bytes.Buffer
	require.NoError(t, tracker.SaveTo(&buf))
	text := buf.String()
	assert.Less(t, strings.Index(text, "a.py"), strings.Index(text, "z.py"))
}

func TestTracker_LoadMissingFile(t *testing.T) {
	tracker, err := Open(filepath.Join(t.TempDir(), "nothing-here"))
	require.NoError(t, err)
	assert.Equal(t, 0, tracker.Len())
}

func TestTracker_LoadFromErrors(t *testing.T) {
	tracker := New(t.TempDir())

	err := tracker.LoadFrom(strings.NewReader("not json"))
	assert.Error(t, err)

	require.NoError(t, tracker.LoadFrom(strings.NewReader(`{"version": 99, "files": [{"path": "/x.py"}]}`)))
	assert.Equal(t, 0, tracker.Len(), "other versions are ignored")
}
