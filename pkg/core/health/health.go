// ============================================================================
// SmartWeb - SmartScript Web Runtime
// ============================================================================
//
// Package:     health
// Description: Named health checks for the server and its stores
// Author:      Mike Stoffels
// Created:     2026-03-19
// License:     MIT
// ============================================================================

// Package health runs named checks concurrently and folds them into one
// report. The server exposes the report through the Status worker.
package health

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// Status of a single check or the whole report
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult is the outcome of one check
type CheckResult struct {
	Name     string
	Status   Status
	Message  string
	Duration time.Duration
}

// CheckFunc performs one check
type CheckFunc func(ctx context.Context) CheckResult

// Registry holds named checks
type Registry struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	service string
	version string
	startAt time.Time
	now     func() time.Time
}

// NewRegistry creates an empty registry for service at version
func NewRegistry(service, version string) *Registry {
	return &Registry{
		checks:  make(map[string]CheckFunc),
		service: service,
		version: version,
		startAt: time.Now(),
		now:     time.Now,
	}
}

// Register adds or replaces the check called name
func (r *Registry) Register(name string, fn CheckFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[name] = fn
}

// Names returns the registered check names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.checks))
	for name := range r.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Report is the combined result of all checks, sorted by name
type Report struct {
	Service string
	Version string
	Status  Status
	Uptime  time.Duration
	Checks  []CheckResult
}

// Check runs all checks concurrently. The report is unhealthy if any check
// is, degraded if any check is degraded, healthy otherwise.
func (r *Registry) Check(ctx context.Context) *Report {
	r.mu.RLock()
	checks := make(map[string]CheckFunc, len(r.checks))
	for name, fn := range r.checks {
		checks[name] = fn
	}
	r.mu.RUnlock()

	results := make([]CheckResult, 0, len(checks))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for name, fn := range checks {
		wg.Add(1)
		go func(name string, fn CheckFunc) {
			defer wg.Done()
			start := time.Now()
			result := fn(ctx)
			result.Name = name
			result.Duration = time.Since(start)
			if result.Status == "" {
				result.Status = StatusHealthy
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(name, fn)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	overall := StatusHealthy
	for _, res := range results {
		switch res.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall != StatusUnhealthy {
				overall = StatusDegraded
			}
		}
	}

	return &Report{
		Service: r.service,
		Version: r.version,
		Status:  overall,
		Uptime:  r.now().Sub(r.startAt),
		Checks:  results,
	}
}

// String returns a one line summary
func (r *Report) String() string {
	return fmt.Sprintf("%s %s: %s (%d checks, up %s)",
		r.Service, r.Version, r.Status, len(r.Checks), r.Uptime.Round(time.Second))
}

// DirCheck reports unhealthy when path is not a readable directory
func DirCheck(path string) CheckFunc {
	return func(ctx context.Context) CheckResult {
		info, err := os.Stat(path)
		if err != nil {
			return CheckResult{Status: StatusUnhealthy, Message: err.Error()}
		}
		if !info.IsDir() {
			return CheckResult{Status: StatusUnhealthy, Message: path + " is not a directory"}
		}
		f, err := os.Open(path)
		if err != nil {
			return CheckResult{Status: StatusUnhealthy, Message: err.Error()}
		}
		f.Close()
		return CheckResult{Status: StatusHealthy, Message: path}
	}
}

// CountCheck reports the value returned by count, or degraded when it fails.
// The access log is optional, so a failing store must not mark the server
// unhealthy.
func CountCheck(unit string, count func(ctx context.Context) (int64, error)) CheckFunc {
	return func(ctx context.Context) CheckResult {
		n, err := count(ctx)
		if err != nil {
			return CheckResult{Status: StatusDegraded, Message: err.Error()}
		}
		return CheckResult{Status: StatusHealthy, Message: fmt.Sprintf("%d %s", n, unit)}
	}
}
