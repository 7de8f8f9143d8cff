// Package cache keeps per-owner habit snapshots stamped with a version
// counter. Every successful mutation bumps the owner's version, so a
// snapshot read before the mutation is never served after it.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/julianstephens/orbitflow/internal/models"
)

// Snapshot is an owner's habit list as read at Version.
type Snapshot struct {
	Version   int64          `json:"version"`
	Habits    []models.Habit `json:"habits"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// Cache stores one snapshot per owner.
type Cache interface {
	// Version returns the owner's current version.
	Version(ctx context.Context, ownerID string) (int64, error)
	// Get returns the stored snapshot only if it was taken at the current
	// version and has not expired.
	Get(ctx context.Context, ownerID string) (Snapshot, bool, error)
	// Put stores snap. A snapshot whose version is already stale is dropped.
	Put(ctx context.Context, ownerID string, snap Snapshot) error
	// Invalidate bumps the owner's version and returns the new value.
	Invalidate(ctx context.Context, ownerID string) (int64, error)
	Ping(ctx context.Context) error
	Stats() StatsSnapshot
	Close() error
}

// Config holds cache configuration.
type Config struct {
	RedisAddr string
	Prefix    string
	TTL       time.Duration
}

// Stats tracks cache statistics.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Sets    uint64
	Stale   uint64
	Bumps   uint64
	Errors  uint64
	Backend string
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Backend   string  `json:"backend"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Sets      uint64  `json:"sets"`
	Stale     uint64  `json:"stale"`
	Bumps     uint64  `json:"bumps"`
	Errors    uint64  `json:"errors"`
	HitRate   float64 `json:"hit_rate"`
	TotalGets uint64  `json:"total_gets"`
}

func (s *Stats) snapshot() StatsSnapshot {
	hits := atomic.LoadUint64(&s.Hits)
	misses := atomic.LoadUint64(&s.Misses)
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return StatsSnapshot{
		Backend:   s.Backend,
		Hits:      hits,
		Misses:    misses,
		Sets:      atomic.LoadUint64(&s.Sets),
		Stale:     atomic.LoadUint64(&s.Stale),
		Bumps:     atomic.LoadUint64(&s.Bumps),
		Errors:    atomic.LoadUint64(&s.Errors),
		HitRate:   hitRate,
		TotalGets: total,
	}
}

// New returns a Redis-backed cache when cfg.RedisAddr is set and an
// in-process cache otherwise. The Redis connection is checked up front.
func New(ctx context.Context, cfg Config) (Cache, error) {
	if cfg.RedisAddr == "" {
		return NewMemory(cfg.TTL), nil
	}
	return DialRedis(ctx, cfg)
}

// cloneHabits copies habits so callers cannot mutate cached completions.
func cloneHabits(habits []models.Habit) []models.Habit {
	out := make([]models.Habit, len(habits))
	for i, h := range habits {
		out[i] = h.Clone()
	}
	return out
}
