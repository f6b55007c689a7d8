// Package scanner finds Python sources under a directory tree for batch
// analysis. It respects .pyflowignore files with gitignore-style patterns.
package scanner

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileInfo represents information about a discovered file.
type FileInfo struct {
	Path     string // Relative path from root, slash-separated
	FullPath string // Absolute path
	Size     int64  // File size in bytes
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden      bool     // Skip hidden files and directories (starting with .)
	FollowSymlinks  bool     // Follow file symlinks (within root only)
	DefaultExcludes []string // Directory names never descended into
	IgnoreFileName  string   // Name of the ignore file (default: .pyflowignore)
	Extensions      []string // Accepted file extensions
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		FollowSymlinks: false,
		IgnoreFileName: ".pyflowignore",
		Extensions:     []string{".py", ".pyw"},
		DefaultExcludes: []string{
			".git",
			".hg",
			".svn",
			"__pycache__",
			".venv",
			"venv",
			"env",
			".tox",
			".nox",
			".mypy_cache",
			".pytest_cache",
			".eggs",
			"site-packages",
			"node_modules",
			"build",
			"dist",
		},
	}
}

// Scanner provides file tree scanning capabilities.
type Scanner struct {
	opts Options
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	if opts.IgnoreFileName == "" {
		opts.IgnoreFileName = ".pyflowignore"
	}
	return &Scanner{opts: opts}
}

// Scan walks root and returns the accepted files sorted by path.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanning %s: not a directory", root)
	}

	patterns, err := s.loadIgnorePatterns(absRoot, "")
	if err != nil {
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}

	var files []FileInfo
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, the walk goes on.
			return nil
		}
		relPath, err := filepath.Rel(absRoot, path)
		if err != nil || relPath == "." {
			return nil
		}
		rel := filepath.ToSlash(relPath)

		if s.opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.isDefaultExcluded(d.Name()) || ignored(rel, true, patterns) {
				return filepath.SkipDir
			}
			nested, err := s.loadIgnorePatterns(path, rel)
			if err == nil {
				patterns = append(patterns, nested...)
			}
			return nil
		}

		if !s.accepts(d.Name()) || ignored(rel, false, patterns) {
			return nil
		}

		fi, ok := s.regularFile(path, absRoot, d)
		if !ok {
			return nil
		}
		files = append(files, FileInfo{Path: rel, FullPath: path, Size: fi.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// regularFile resolves d to a regular file, following symlinks that stay
// inside root when enabled.
func (s *Scanner) regularFile(path, root string, d fs.DirEntry) (fs.FileInfo, bool) {
	if d.Type()&fs.ModeSymlink == 0 {
		info, err := d.Info()
		return info, err == nil
	}
	if !s.opts.FollowSymlinks {
		return nil, false
	}
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, false
	}
	if realRoot, err := filepath.EvalSymlinks(root); err == nil {
		root = realRoot
	}
	if !strings.HasPrefix(real, root+string(filepath.Separator)) {
		return nil, false
	}
	info, err := os.Stat(real)
	if err != nil || info.IsDir() {
		return nil, false
	}
	return info, true
}

func (s *Scanner) accepts(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range s.opts.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// isDefaultExcluded checks if the name matches default exclusion patterns.
func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// loadIgnorePatterns reads the ignore file in dir; rel is dir relative to
// the scan root and scopes the patterns.
func (s *Scanner) loadIgnorePatterns(dir, rel string) ([]IgnorePattern, error) {
	file, err := os.Open(filepath.Join(dir, s.opts.IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var patterns []IgnorePattern
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		if p, ok := ParseIgnorePattern(sc.Text(), rel); ok {
			patterns = append(patterns, p)
		}
	}
	return patterns, sc.Err()
}

// Scan is a convenience function that scans a directory with default options.
func Scan(root string) ([]FileInfo, error) {
	return New(DefaultOptions()).Scan(root)
}
