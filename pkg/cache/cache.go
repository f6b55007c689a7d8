// Package cache provides an LRU cache of analysis results with disk
// persistence.
package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/l3aro/pyflow/pkg/simulate"
)

// formatVersion is bumped whenever the persisted layout changes; files
// written with another version are ignored on load.
const formatVersion = 1

// Entry is one cached analysis with metadata.
type Entry struct {
	Key        string            `msgpack:"key" json:"key"`
	Source     string            `msgpack:"source" json:"source"` // file path, informational
	Value      simulate.Snapshot `msgpack:"value" json:"value"`
	AccessedAt time.Time         `msgpack:"accessed_at" json:"accessed_at"`
	CreatedAt  time.Time         `msgpack:"created_at" json:"created_at"`
	Size       int               `msgpack:"size" json:"size"` // estimated size in bytes
}

// LRUCache is an in-memory LRU cache of analysis snapshots.
type LRUCache struct {
	mu           sync.RWMutex
	items        map[string]*listItem
	lru          *list // doubly-linked list (most recent at front)
	maxSize      int
	maxBytes     int64
	currentBytes int64
	hits         int64
	misses       int64
	onEvict      func(key string)
}

// listItem is an item in the doubly-linked list.
type listItem struct {
	Entry
	prev *listItem
	next *listItem
}

// list represents a doubly-linked list.
type list struct {
	head *listItem // most recently accessed
	tail *listItem // least recently accessed
	len  int
}

func newList() *list {
	return &list{}
}

// moveToFront moves an item to the front (most recently used).
func (l *list) moveToFront(item *listItem) {
	if item == l.head {
		return
	}
	l.unlink(item)
	l.len++
	l.pushFrontLinked(item)
}

// pushFront adds an item to the front of the list.
func (l *list) pushFront(item *listItem) {
	l.pushFrontLinked(item)
	l.len++
}

func (l *list) pushFrontLinked(item *listItem) {
	item.prev = nil
	item.next = l.head
	if l.head != nil {
		l.head.prev = item
	}
	l.head = item
	if l.tail == nil {
		l.tail = item
	}
}

// unlink detaches item from the list.
func (l *list) unlink(item *listItem) {
	if item.prev != nil {
		item.prev.next = item.next
	} else {
		l.head = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	} else {
		l.tail = item.prev
	}
	item.prev, item.next = nil, nil
	l.len--
}

// removeBack removes and returns the least recently used item.
func (l *list) removeBack() *listItem {
	item := l.tail
	if item == nil {
		return nil
	}
	l.unlink(item)
	return item
}

// Options configures the LRU cache.
type Options struct {
	// MaxSize is the maximum number of entries. 0 means unlimited.
	MaxSize int

	// MaxBytes is the approximate maximum size in bytes. 0 means unlimited.
	MaxBytes int64

	// OnEvict is called when an entry is evicted.
	OnEvict func(key string)
}

// New creates a new LRU cache with the given options.
func New(opts Options) *LRUCache {
	return &LRUCache{
		items:    make(map[string]*listItem),
		lru:      newList(),
		maxSize:  opts.MaxSize,
		maxBytes: opts.MaxBytes,
		onEvict:  opts.OnEvict,
	}
}

// Get retrieves a snapshot and counts the hit or miss.
func (c *LRUCache) Get(key string) (simulate.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		c.misses++
		return simulate.Snapshot{}, false
	}

	c.hits++
	item.AccessedAt = time.Now()
	c.lru.moveToFront(item)
	return item.Value, true
}

// Set stores a snapshot, evicting least recently used entries over the
// limits.
func (c *LRUCache) Set(key, source string, value simulate.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := estimateSize(value)
	now := time.Now()

	if item, exists := c.items[key]; exists {
		c.currentBytes -= int64(item.Size)
		item.Value = value
		item.Source = source
		item.Size = size
		item.AccessedAt = now
		c.currentBytes += int64(size)
		c.lru.moveToFront(item)
		c.evictIfNeeded()
		return
	}

	item := &listItem{Entry: Entry{
		Key:        key,
		Source:     source,
		Value:      value,
		AccessedAt: now,
		CreatedAt:  now,
		Size:       size,
	}}
	c.items[key] = item
	c.lru.pushFront(item)
	c.currentBytes += int64(size)
	c.evictIfNeeded()
}

// Delete removes a key from the cache.
func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		return
	}
	c.lru.unlink(item)
	delete(c.items, key)
	c.currentBytes -= int64(item.Size)

	if c.onEvict != nil {
		c.onEvict(key)
	}
}

// Clear removes all entries from the cache.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*listItem)
	c.lru = newList()
	c.currentBytes = 0
}

// Len returns the number of entries in the cache.
func (c *LRUCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats is a point-in-time view of the cache.
type Stats struct {
	Length       int   `json:"length"`
	CurrentBytes int64 `json:"current_bytes"`
	HitCount     int64 `json:"hit_count"`
	MissCount    int64 `json:"miss_count"`
}

// Stats returns the current cache statistics.
func (c *LRUCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Length:       len(c.items),
		CurrentBytes: c.currentBytes,
		HitCount:     c.hits,
		MissCount:    c.misses,
	}
}

// HitRate returns the fraction of lookups that were hits.
func (c *LRUCache) HitRate() float64 {
	s := c.Stats()
	total := s.HitCount + s.MissCount
	if total == 0 {
		return 0
	}
	return float64(s.HitCount) / float64(total)
}

func (c *LRUCache) evictIfNeeded() {
	for c.shouldEvict() {
		item := c.lru.removeBack()
		if item == nil {
			break
		}
		delete(c.items, item.Key)
		c.currentBytes -= int64(item.Size)

		if c.onEvict != nil {
			c.onEvict(item.Key)
		}
	}
}

func (c *LRUCache) shouldEvict() bool {
	if c.maxSize > 0 && c.lru.len > c.maxSize {
		return true
	}
	if c.maxBytes > 0 && c.currentBytes > c.maxBytes && c.lru.len > 1 {
		return true
	}
	return false
}

// persisted is the on-disk layout.
type persisted struct {
	Version int     `msgpack:"version"`
	Entries []Entry `msgpack:"entries"`
}

// Save writes the cache with msgpack, most recently used entry first.
func (c *LRUCache) Save(w io.Writer) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data := persisted{Version: formatVersion, Entries: make([]Entry, 0, len(c.items))}
	for item := c.lru.head; item != nil; item = item.next {
		data.Entries = append(data.Entries, item.Entry)
	}
	return msgpack.NewEncoder(w).Encode(&data)
}

// Load replaces the cache contents with entries read by Save. Data written
// by another format version is discarded without error.
func (c *LRUCache) Load(r io.Reader) error {
	var data persisted
	if err := msgpack.NewDecoder(r).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*listItem)
	c.lru = newList()
	c.currentBytes = 0
	if data.Version != formatVersion {
		return nil
	}

	for i := len(data.Entries) - 1; i >= 0; i-- {
		item := &listItem{Entry: data.Entries[i]}
		c.items[item.Key] = item
		c.lru.pushFront(item)
		c.currentBytes += int64(item.Size)
	}
	c.evictIfNeeded()
	return nil
}

// PersistToFile saves the cache to path, creating parent directories.
func PersistToFile(c *LRUCache, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer f.Close()

	return c.Save(f)
}

// LoadFromFile loads the cache from path. A missing file is not an error.
func LoadFromFile(c *LRUCache, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	return c.Load(f)
}

// estimateSize approximates the memory held by a snapshot.
func estimateSize(value simulate.Snapshot) int {
	b, _ := json.Marshal(value)
	return len(b)
}
