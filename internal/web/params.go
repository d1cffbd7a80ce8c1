// File: params.go
// Title: Parameter Store
// Description: Concurrency safe string map backing the persistent session
//              parameters.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-11
// Modified: 2026-03-11
//
// Change History:
// - 2026-03-11 v0.1.0: Initial implementation

package web

import (
	"sort"
	"sync"
)

// ParamStore is a string map that is safe for concurrent use. Sessions use
// one to hold persistent parameters shared by all requests of the session.
type ParamStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewParamStore creates an empty store
func NewParamStore() *ParamStore {
	return &ParamStore{values: make(map[string]string)}
}

// Get returns the value for name and whether it was set
func (s *ParamStore) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// Set stores value under name
func (s *ParamStore) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

// Delete removes name
func (s *ParamStore) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, name)
}

// Names returns the stored names in sorted order
func (s *ParamStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.values)
}

// Len returns the number of stored parameters
func (s *ParamStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
