// Package dirty remembers which source produced each rendered flow graph,
// so batch runs can skip files whose output would come out the same.
package dirty

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
)

// FileName is the manifest file inside the cache directory.
const FileName = "rendered.json"

const manifestVersion = 1

// fileState records the last successful render of one source file.
type fileState struct {
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
	Output      string `json:"output"`
	RenderedAt  int64  `json:"rendered_at"` // Unix timestamp
}

// manifest is the on-disk JSON structure.
type manifest struct {
	Version int         `json:"version"`
	Files   []fileState `json:"files"`
}

// Tracker maps source files to the fingerprint of their last render.
// It is safe for concurrent use.
type Tracker struct {
	mu    sync.RWMutex
	files map[string]fileState
	path  string
}

// New creates an empty Tracker persisted to dir/rendered.json.
func New(dir string) *Tracker {
	return &Tracker{
		files: make(map[string]fileState),
		path:  filepath.Join(dir, FileName),
	}
}

// Open creates a Tracker and loads its manifest if one exists.
func Open(dir string) (*Tracker, error) {
	t := New(dir)
	if err := t.Load(); err != nil {
		return nil, err
	}
	return t, nil
}

// Fingerprint hashes a source together with every setting that changes
// its rendered output.
func Fingerprint(src []byte, settings ...string) string {
	h := xxh3.New()
	h.Write(src)
	for _, s := range settings {
		h.Write([]byte{0})
		h.Write([]byte(s))
	}
	sum := h.Sum128().Bytes()
	return hex.EncodeToString(sum[:])
}

// IsDirty reports whether path needs rendering: it was never rendered, its
// fingerprint changed, or the recorded output is gone.
func (t *Tracker) IsDirty(path, fingerprint string) bool {
	t.mu.RLock()
	state, ok := t.files[key(path)]
	t.mu.RUnlock()

	if !ok || state.Fingerprint != fingerprint {
		return true
	}
	_, err := os.Stat(state.Output)
	return err != nil
}

// MarkClean records a successful render of path into output.
func (t *Tracker) MarkClean(path, fingerprint, output string) {
	k := key(path)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files[k] = fileState{
		Path:        k,
		Fingerprint: fingerprint,
		Output:      output,
		RenderedAt:  time.Now().Unix(),
	}
}

// Output returns the recorded output of path.
func (t *Tracker) Output(path string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	state, ok := t.files[key(path)]
	return state.Output, ok
}

// Remove forgets path.
func (t *Tracker) Remove(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.files, key(path))
}

// Len returns the number of tracked files.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.files)
}

// Path returns the manifest location.
func (t *Tracker) Path() string {
	return t.path
}

func key(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Save persists the manifest, creating its directory.
func (t *Tracker) Save() error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	f, err := os.Create(t.path)
	if err != nil {
		return fmt.Errorf("failed to create manifest file: %w", err)
	}
	defer f.Close()

	return t.SaveTo(f)
}

// Load restores the manifest. A missing file leaves the tracker empty.
func (t *Tracker) Load() error {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open manifest file: %w", err)
	}
	defer f.Close()

	return t.LoadFrom(f)
}

// SaveTo writes the manifest to w, sorted by path.
func (t *Tracker) SaveTo(w io.Writer) error {
	t.mu.RLock()
	files := make([]fileState, 0, len(t.files))
	for _, state := range t.files {
		files = append(files, state)
	}
	t.mu.RUnlock()

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(manifest{Version: manifestVersion, Files: files})
}

// LoadFrom reads a manifest from r. Manifests of another version are
// ignored.
func (t *Tracker) LoadFrom(r io.Reader) error {
	var data manifest
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode manifest: %w", err)
	}

	files := make(map[string]fileState, len(data.Files))
	if data.Version == manifestVersion {
		for _, state := range data.Files {
			files[state.Path] = state
		}
	}

	t.mu.Lock()
	t.files = files
	t.mu.Unlock()
	return nil
}
