package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type memoryEntry struct {
	version int64
	snap    *Snapshot
	expires time.Time
}

// Memory is an in-process Cache.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*memoryEntry
	stats   *Stats
	now     func() time.Time
}

// NewMemory creates an in-process cache. A ttl of zero keeps snapshots until
// the owner's version changes.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]*memoryEntry),
		stats:   &Stats{Backend: "memory"},
		now:     time.Now,
	}
}

func (m *Memory) entry(ownerID string) *memoryEntry {
	e, ok := m.entries[ownerID]
	if !ok {
		e = &memoryEntry{}
		m.entries[ownerID] = e
	}
	return e
}

func (m *Memory) Version(_ context.Context, ownerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entry(ownerID).version, nil
}

func (m *Memory) Get(_ context.Context, ownerID string) (Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entry(ownerID)
	if e.snap == nil {
		atomic.AddUint64(&m.stats.Misses, 1)
		return Snapshot{}, false, nil
	}
	if e.snap.Version != e.version || (!e.expires.IsZero() && m.now().After(e.expires)) {
		e.snap = nil
		atomic.AddUint64(&m.stats.Misses, 1)
		return Snapshot{}, false, nil
	}

	atomic.AddUint64(&m.stats.Hits, 1)
	snap := *e.snap
	snap.Habits = cloneHabits(e.snap.Habits)
	return snap, true, nil
}

func (m *Memory) Put(_ context.Context, ownerID string, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entry(ownerID)
	if snap.Version != e.version {
		atomic.AddUint64(&m.stats.Stale, 1)
		return nil
	}

	snap.Habits = cloneHabits(snap.Habits)
	e.snap = &snap
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	} else {
		e.expires = time.Time{}
	}
	atomic.AddUint64(&m.stats.Sets, 1)
	return nil
}

func (m *Memory) Invalidate(_ context.Context, ownerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entry(ownerID)
	e.version++
	e.snap = nil
	atomic.AddUint64(&m.stats.Bumps, 1)
	return e.version, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Stats() StatsSnapshot {
	return m.stats.snapshot()
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*memoryEntry)
	return nil
}
