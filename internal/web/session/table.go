// File: table.go
// Title: Session Table
// Description: Maps session ids to host-bound sessions with a sliding
//              expiry. Lookups, creation and refresh are serialized by one
//              mutex; each session's parameter store is independently safe.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-12
// Modified: 2026-03-13
//
// Change History:
// - 2026-03-12 v0.1.0: Initial implementation
// - 2026-03-13 v0.1.1: Background sweeper

package session

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/msto63/smartweb/internal/web"
	"github.com/msto63/smartweb/pkg/core/logging"
)

// SIDLength is the number of letters in a session id
const SIDLength = 20

// DefaultTimeout is used when Options.Timeout is not positive
const DefaultTimeout = 10 * time.Minute

// Entry is one session
type Entry struct {
	SID        string
	Host       string
	ValidUntil time.Time
	Params     *web.ParamStore
}

// Options configures a Table
type Options struct {
	Timeout time.Duration
	Now     func() time.Time
	NewSID  func() string
	Logger  *logging.Logger
}

// Table holds all live sessions
type Table struct {
	mu       sync.Mutex
	sessions map[string]*Entry

	timeout time.Duration
	now     func() time.Time
	newSID  func() string
	logger  *logging.Logger
}

// NewTable creates an empty session table
func NewTable(opts Options) *Table {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewSID == nil {
		opts.NewSID = NewSID
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Table{
		sessions: make(map[string]*Entry),
		timeout:  opts.Timeout,
		now:      opts.Now,
		newSID:   opts.NewSID,
		logger:   opts.Logger.With("component", "session-table"),
	}
}

// Resolve returns the session for sid if it exists, belongs to host and has
// not expired; its expiry is then extended. An expired session is removed.
// In every other case a new session is created and created is true.
func (t *Table) Resolve(sid, host string) (entry *Entry, created bool) {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if sid != "" {
		if e, ok := t.sessions[sid]; ok {
			switch {
			case !now.Before(e.ValidUntil):
				delete(t.sessions, sid)
				t.logger.Debug("Session expired", "sid", sid)
			case e.Host == host:
				e.ValidUntil = now.Add(t.timeout)
				return e, false
			}
		}
	}

	e := &Entry{
		SID:        t.uniqueSID(),
		Host:       host,
		ValidUntil: now.Add(t.timeout),
		Params:     web.NewParamStore(),
	}
	t.sessions[e.SID] = e
	t.logger.Debug("Session created", "sid", e.SID, "host", host)
	return e, true
}

// uniqueSID must be called with the lock held
func (t *Table) uniqueSID() string {
	for {
		sid := t.newSID()
		if _, taken := t.sessions[sid]; !taken {
			return sid
		}
	}
}

// Sweep removes all expired sessions and returns how many were removed
func (t *Table) Sweep() int {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for sid, e := range t.sessions {
		if !now.Before(e.ValidUntil) {
			delete(t.sessions, sid)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done
func (t *Table) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := t.Sweep(); n > 0 {
				t.logger.Info("Expired sessions removed", "count", n, "remaining", t.Len())
			}
		}
	}
}

// Len returns the number of stored sessions, expired ones included
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// Timeout returns the sliding session lifetime
func (t *Table) Timeout() time.Duration {
	return t.timeout
}

// NewSID returns SIDLength random letters A-Z from crypto/rand
func NewSID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// bytes >= limit are rejected so every letter is equally likely
	const limit = 256 - 256%len(letters)

	sid := make([]byte, 0, SIDLength)
	buf := make([]byte, SIDLength)
	for len(sid) < SIDLength {
		if _, err := rand.Read(buf); err != nil {
			panic("session: crypto/rand failed: " + err.Error())
		}
		for _, b := range buf {
			if int(b) < limit && len(sid) < SIDLength {
				sid = append(sid, letters[int(b)%len(letters)])
			}
		}
	}
	return string(sid)
}
