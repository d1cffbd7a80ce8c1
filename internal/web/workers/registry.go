// File: registry.go
// Title: Worker Registry
// Description: Thread-safe name to worker mapping used for /ext/<Name>
//              requests and for the path table of the configuration.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-19
// Modified: 2026-03-19
//
// Change History:
// - 2026-03-19 v0.1.0: Initial implementation

package workers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/msto63/smartweb/internal/web"
	"github.com/msto63/smartweb/internal/web/accesslog"
)

// Registry maps worker names to workers
type Registry struct {
	mu      sync.RWMutex
	workers map[string]web.Worker
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{workers: make(map[string]web.Worker)}
}

// Register adds w under name. Names are unique.
func (r *Registry) Register(name string, w web.Worker) error {
	if name == "" {
		return fmt.Errorf("worker name cannot be empty")
	}
	if w == nil {
		return fmt.Errorf("worker %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workers[name]; exists {
		return fmt.Errorf("worker %q already registered", name)
	}
	r.workers[name] = w
	return nil
}

// MustRegister is Register that panics on error
func (r *Registry) MustRegister(name string, w web.Worker) {
	if err := r.Register(name, w); err != nil {
		panic(err)
	}
}

// Lookup returns the worker registered under name
func (r *Registry) Lookup(name string) (web.Worker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workers[name]
	return w, ok
}

// Names returns the registered names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.workers))
	for name := range r.workers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RecentLister is the part of the access log the AccessLog worker reads
type RecentLister interface {
	Recent(ctx context.Context, limit int) ([]*accesslog.Entry, error)
}

// Default returns a registry with all built-in workers. access may be nil,
// in which case the AccessLog worker reports that logging is disabled.
func Default(access RecentLister) *Registry {
	r := NewRegistry()
	r.MustRegister("HelloWorker", HelloWorker{})
	r.MustRegister("CircleWorker", CircleWorker{Size: 200})
	r.MustRegister("EchoParams", EchoParams{})
	r.MustRegister("SumWorker", SumWorker{})
	r.MustRegister("Home", Home{})
	r.MustRegister("BgColorWorker", BgColorWorker{})
	r.MustRegister("AccessLog", AccessLogWorker{Store: access, Limit: 20})
	return r
}
