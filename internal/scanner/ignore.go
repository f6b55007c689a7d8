package scanner

import (
	"path"
	"strings"
)

// IgnorePattern represents a single gitignore-style pattern.
type IgnorePattern struct {
	pattern  string   // Original pattern
	base     string   // Directory holding the ignore file, relative to root
	negate   bool     // Pattern starts with !
	dirOnly  bool     // Pattern ends with /
	anchored bool     // Pattern contains a / other than a trailing one
	segments []string // Slash-separated glob segments
}

// ParseIgnorePattern parses one line of an ignore file found in base.
// Blank lines and comments report false.
func ParseIgnorePattern(line, base string) (IgnorePattern, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return IgnorePattern{}, false
	}

	p := IgnorePattern{pattern: line, base: strings.Trim(base, "/")}
	if strings.HasPrefix(line, "!") {
		p.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.Contains(line, "/") {
		p.anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	p.segments = strings.Split(line, "/")
	return p, true
}

// Match reports whether rel, a slash-separated path relative to the scan
// root, is matched. Negation is left to the caller.
func (p IgnorePattern) Match(rel string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	if p.base != "" {
		if !strings.HasPrefix(rel, p.base+"/") {
			return false
		}
		rel = strings.TrimPrefix(rel, p.base+"/")
	}

	parts := strings.Split(rel, "/")
	if p.anchored {
		return matchSegments(p.segments, parts)
	}
	for i := range parts {
		if matchSegments(p.segments, parts[i:]) {
			return true
		}
	}
	return false
}

// IsNegation returns true if this pattern is a negation pattern.
func (p IgnorePattern) IsNegation() bool {
	return p.negate
}

func (p IgnorePattern) String() string {
	return p.pattern
}

// matchSegments matches glob segments against path segments; ** spans any
// number of directories.
func matchSegments(pattern, parts []string) bool {
	if len(pattern) == 0 {
		return len(parts) == 0
	}
	if pattern[0] == "**" {
		for i := 0; i <= len(parts); i++ {
			if matchSegments(pattern[1:], parts[i:]) {
				return true
			}
		}
		return false
	}
	if len(parts) == 0 {
		return false
	}
	ok, err := path.Match(pattern[0], parts[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], parts[1:])
}

// ignored applies patterns in order so that later negations override
// earlier matches.
func ignored(rel string, isDir bool, patterns []IgnorePattern) bool {
	result := false
	for _, p := range patterns {
		if p.Match(rel, isDir) {
			result = !p.IsNegation()
		}
	}
	return result
}
