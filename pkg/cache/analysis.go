package cache

import (
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/zeebo/xxh3"

	"github.com/l3aro/pyflow/internal/log"
	"github.com/l3aro/pyflow/pkg/simulate"
)

// FileName is the cache file inside the cache directory.
const FileName = "analysis.msgpack"

// Key identifies an analysis by source content and the options that change
// its outcome.
func Key(src []byte, opts simulate.Options) string {
	h := xxh3.New()
	h.Write(src)
	fmt.Fprintf(h, "\x00%s\x00%d", opts.Entry, opts.LabelWidth)
	sum := h.Sum128().Bytes()
	return hex.EncodeToString(sum[:])
}

// AnalysisCache memoizes simulation runs and persists them between
// invocations.
type AnalysisCache struct {
	lru    *LRUCache
	path   string
	logger log.Logger
}

// Open loads the cache stored in dir, bounded by limits. A missing or
// unreadable cache file yields an empty cache. Evictions are logged at
// debug level before limits.OnEvict runs.
func Open(dir string, limits Options, logger log.Logger) *AnalysisCache {
	if logger == nil {
		logger = log.Nop()
	}
	onEvict := limits.OnEvict
	limits.OnEvict = func(key string) {
		logger.Debug("analysis cache eviction", "key", key)
		if onEvict != nil {
			onEvict(key)
		}
	}
	c := &AnalysisCache{
		lru:    New(limits),
		path:   filepath.Join(dir, FileName),
		logger: logger,
	}
	if err := LoadFromFile(c.lru, c.path); err != nil {
		logger.Warn("discarding unreadable analysis cache", "path", c.path, "error", err)
		c.lru.Clear()
	}
	return c
}

// Analyze returns the cached result for src or runs the simulation and
// stores it. Cached results carry no definition table.
func (c *AnalysisCache) Analyze(path string, src []byte, opts simulate.Options) (*simulate.Result, error) {
	key := Key(src, opts)
	if snap, ok := c.lru.Get(key); ok {
		c.logger.Debug("analysis cache hit", "file", path)
		return snap.Result(), nil
	}

	res, err := simulate.AnalyzeSource(src, opts)
	if err != nil {
		return nil, err
	}
	c.lru.Set(key, path, res.Snapshot())
	return res, nil
}

// Save writes the cache back to disk.
func (c *AnalysisCache) Save() error {
	return PersistToFile(c.lru, c.path)
}

// Stats returns the underlying LRU statistics.
func (c *AnalysisCache) Stats() Stats {
	return c.lru.Stats()
}

// Path returns the cache file location.
func (c *AnalysisCache) Path() string {
	return c.path
}
