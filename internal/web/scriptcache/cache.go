// File: cache.go
// Title: Parsed Script Cache
// Description: Keeps parsed SmartScript documents in memory, keyed by
//              absolute file path. An fsnotify watcher on every directory
//              holding a cached script evicts entries when the file is
//              written, removed or renamed.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-15
// Modified: 2026-03-17
//
// Change History:
// - 2026-03-15 v0.1.0: Initial implementation on top of the TTL cache layout
// - 2026-03-17 v0.1.1: fsnotify invalidation replaces TTL expiry

package scriptcache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/msto63/smartweb/internal/smartscript/ast"
	"github.com/msto63/smartweb/internal/smartscript/parser"
	"github.com/msto63/smartweb/pkg/core/logging"
)

// DefaultMaxEntries bounds the cache when Options.MaxEntries is not positive
const DefaultMaxEntries = 1000

// entry is one parsed script together with the file state it was parsed from
type entry struct {
	doc     *ast.DocumentNode
	modTime time.Time
	size    int64
	loaded  time.Time
}

// Options configures a Cache
type Options struct {
	MaxEntries int
	Logger     *logging.Logger
	// Parse defaults to parser.Parse
	Parse func(src string) (*ast.DocumentNode, error)
}

// Cache is safe for concurrent use
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	dirs    map[string]bool

	maxEntries int
	parse      func(string) (*ast.DocumentNode, error)
	watcher    *fsnotify.Watcher
	logger     *logging.Logger

	// Metrics
	hits   int64
	misses int64

	stopCh    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a cache and starts its watcher goroutine
func New(opts Options) (*Cache, error) {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.Parse == nil {
		opts.Parse = parser.Parse
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	c := &Cache{
		entries:    make(map[string]*entry),
		dirs:       make(map[string]bool),
		maxEntries: opts.MaxEntries,
		parse:      opts.Parse,
		watcher:    watcher,
		logger:     opts.Logger.With("component", "script-cache"),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
	go c.watchLoop()
	return c, nil
}

// Get returns the parsed document for the script at path, parsing it on
// the first request and after every change. Parse errors are not cached.
func (c *Cache) Get(path string) (*ast.DocumentNode, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve script path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		c.Invalidate(abs)
		return nil, fmt.Errorf("stat script: %w", err)
	}

	c.mu.RLock()
	e, ok := c.entries[abs]
	c.mu.RUnlock()

	if ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return e.doc, nil
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	doc, err := c.parse(string(src))
	if err != nil {
		c.Invalidate(abs)
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(abs), err)
	}

	c.mu.Lock()
	c.misses++
	if _, exists := c.entries[abs]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[abs] = &entry{
		doc:     doc,
		modTime: info.ModTime(),
		size:    info.Size(),
		loaded:  time.Now(),
	}
	c.watchDir(filepath.Dir(abs))
	c.mu.Unlock()

	c.logger.Debug("Script parsed", "file", abs, "nodes", doc.ChildCount())
	return doc, nil
}

// Invalidate drops the cached document for path
func (c *Cache) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, abs)
}

// Len returns the number of cached documents
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cache statistics
func (c *Cache) Stats() (hits, misses int64, hitRate float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	hits = c.hits
	misses = c.misses
	total := hits + misses
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return
}

// Close stops the watcher
func (c *Cache) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stopCh)
		err = c.watcher.Close()
		<-c.done
	})
	return err
}

// watchDir must be called with the lock held
func (c *Cache) watchDir(dir string) {
	if c.dirs[dir] {
		return
	}
	if err := c.watcher.Add(dir); err != nil {
		c.logger.Warn("Cannot watch script directory", "dir", dir, "error", err.Error())
		return
	}
	c.dirs[dir] = true
}

// evictOldest removes the entry loaded first (must be called with lock held)
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, e := range c.entries {
		if oldestKey == "" || e.loaded.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.loaded
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *Cache) watchLoop() {
	defer close(c.done)

	for {
		select {
		case <-c.stopCh:
			return

		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename|fsnotify.Create) == 0 {
				continue
			}
			c.mu.Lock()
			_, cached := c.entries[event.Name]
			delete(c.entries, event.Name)
			c.mu.Unlock()
			if cached {
				c.logger.Debug("Script changed, cache entry dropped", "file", event.Name, "op", event.Op.String())
			}

		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Error("Watcher error", "error", err.Error())
		}
	}
}
