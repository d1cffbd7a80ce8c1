// File: multistack.go
// Title: Named Value Stacks
// Description: Multistack maps a name to an independent stack of values. The
//              script engine keeps loop variables here, so nested loops that
//              reuse a name shadow and restore the outer binding.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-07
// Modified: 2026-03-07
//
// Change History:
// - 2026-03-07 v0.1.0: Initial implementation

package multistack

import (
	"errors"
	"fmt"

	"github.com/msto63/smartweb/internal/smartscript/value"
)

// ErrEmptyStack is returned by Pop and Peek on a name without values
var ErrEmptyStack = errors.New("stack is empty")

type entry struct {
	value *value.Wrapper
	next  *entry
}

// Multistack is a set of named stacks. A name that was never pushed, or
// whose values were all popped, is empty. It is not safe for concurrent use.
type Multistack struct {
	stacks map[string]*entry
}

// New creates an empty Multistack
func New() *Multistack {
	return &Multistack{stacks: make(map[string]*entry)}
}

// Push puts v on top of the stack for name
func (m *Multistack) Push(name string, v *value.Wrapper) {
	m.stacks[name] = &entry{value: v, next: m.stacks[name]}
}

// Pop removes and returns the top of the stack for name
func (m *Multistack) Pop(name string) (*value.Wrapper, error) {
	top, ok := m.stacks[name]
	if !ok {
		return nil, fmt.Errorf("pop %q: %w", name, ErrEmptyStack)
	}
	if top.next == nil {
		delete(m.stacks, name)
	} else {
		m.stacks[name] = top.next
	}
	return top.value, nil
}

// Peek returns the top of the stack for name without removing it
func (m *Multistack) Peek(name string) (*value.Wrapper, error) {
	top, ok := m.stacks[name]
	if !ok {
		return nil, fmt.Errorf("peek %q: %w", name, ErrEmptyStack)
	}
	return top.value, nil
}

// IsEmpty reports whether the stack for name holds no values
func (m *Multistack) IsEmpty(name string) bool {
	_, ok := m.stacks[name]
	return !ok
}

// Len returns the number of non-empty stacks
func (m *Multistack) Len() int {
	return len(m.stacks)
}
