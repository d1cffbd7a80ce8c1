package session

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestTable(timeout time.Duration) (*Table, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)}
	return NewTable(Options{Timeout: timeout, Now: clock.Now}), clock
}

func TestNewSID(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z]{20}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		sid := NewSID()
		assert.Regexp(t, pattern, sid)
		assert.False(t, seen[sid], "duplicate sid %s", sid)
		seen[sid] = true
	}
}

func TestTable_ResolveCreatesAndReuses(t *testing.T) {
	table, clock := newTestTable(time.Minute)

	first, created := table.Resolve("", "example.com")
	require.True(t, created)
	assert.Len(t, first.SID, SIDLength)
	first.Params.Set("bgcolor", "FF0000")

	clock.Advance(30 * time.Second)
	again, created := table.Resolve(first.SID, "example.com")
	assert.False(t, created)
	assert.Same(t, first, again)
	v, _ := again.Params.Get("bgcolor")
	assert.Equal(t, "FF0000", v)
	assert.Equal(t, clock.Now().Add(time.Minute), again.ValidUntil)
}

func TestTable_ResolveRejects(t *testing.T) {
	t.Run("unknown sid", func(t *testing.T) {
		table, _ := newTestTable(time.Minute)
		e, created := table.Resolve("NOSUCHSESSIONIDXXXXX", "h")
		assert.True(t, created)
		assert.NotEqual(t, "NOSUCHSESSIONIDXXXXX", e.SID)
	})

	t.Run("foreign host", func(t *testing.T) {
		table, _ := newTestTable(time.Minute)
		e, _ := table.Resolve("", "a.example")
		other, created := table.Resolve(e.SID, "b.example")
		assert.True(t, created)
		assert.NotEqual(t, e.SID, other.SID)
		assert.Equal(t, 2, table.Len())
	})

	t.Run("expired", func(t *testing.T) {
		table, clock := newTestTable(time.Minute)
		e, _ := table.Resolve("", "h")
		clock.Advance(time.Minute)
		fresh, created := table.Resolve(e.SID, "h")
		assert.True(t, created)
		assert.NotEqual(t, e.SID, fresh.SID)
		assert.Equal(t, 1, table.Len(), "expired entry is removed")
	})
}

func TestTable_SlidingExpiry(t *testing.T) {
	table, clock := newTestTable(time.Minute)
	e, _ := table.Resolve("", "h")
	for i := 0; i < 5; i++ {
		clock.Advance(50 * time.Second)
		_, created := table.Resolve(e.SID, "h")
		require.False(t, created)
	}
}

func TestTable_Sweep(t *testing.T) {
	table, clock := newTestTable(time.Minute)
	old, _ := table.Resolve("", "h")
	clock.Advance(40 * time.Second)
	young, _ := table.Resolve("", "h")
	clock.Advance(30 * time.Second)

	assert.Equal(t, 1, table.Sweep())
	assert.Equal(t, 1, table.Len())

	_, created := table.Resolve(young.SID, "h")
	assert.False(t, created)
	_, created = table.Resolve(old.SID, "h")
	assert.True(t, created)
}

func TestTable_SIDCollisionRetries(t *testing.T) {
	ids := []string{"AAAAAAAAAAAAAAAAAAAA", "AAAAAAAAAAAAAAAAAAAA", "BBBBBBBBBBBBBBBBBBBB"}
	next := 0
	table := NewTable(Options{NewSID: func() string {
		sid := ids[next]
		next++
		return sid
	}})

	a, _ := table.Resolve("", "h")
	b, _ := table.Resolve("", "h")
	assert.Equal(t, "AAAAAAAAAAAAAAAAAAAA", a.SID)
	assert.Equal(t, "BBBBBBBBBBBBBBBBBBBB", b.SID)
}

func TestTable_RunSweeperStops(t *testing.T) {
	table := NewTable(Options{Timeout: time.Millisecond})
	table.Resolve("", "h")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- table.RunSweeper(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return table.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestTable_ConcurrentResolve(t *testing.T) {
	table := NewTable(Options{Timeout: time.Minute})
	e, _ := table.Resolve("", "h")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, created := table.Resolve(e.SID, "h")
			assert.False(t, created)
			got.Params.Set("k", "v")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, table.Len())
}
