package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/julianstephens/orbitflow/internal/constants"
	"github.com/julianstephens/orbitflow/internal/logger"
)

// Redis is a Cache shared by every orbitflow process pointed at the same
// server. Versions live in a counter key; snapshots are JSON with a TTL.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	stats  *Stats
}

// DialRedis connects to cfg.RedisAddr and verifies the connection.
func DialRedis(ctx context.Context, cfg Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return NewRedis(client, cfg.Prefix, cfg.TTL), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = constants.DefaultCachePref
	}
	return &Redis{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		stats:  &Stats{Backend: "redis"},
	}
}

func (r *Redis) versionKey(ownerID string) string {
	return r.prefix + "habits:version:" + ownerID
}

func (r *Redis) snapshotKey(ownerID string) string {
	return r.prefix + "habits:snapshot:" + ownerID
}

func (r *Redis) fail(op string, err error) error {
	atomic.AddUint64(&r.stats.Errors, 1)
	logger.Warn("Cache operation failed", "op", op, "error", err)
	return fmt.Errorf("cache %s error: %w", op, err)
}

func (r *Redis) Version(ctx context.Context, ownerID string) (int64, error) {
	v, err := r.client.Get(ctx, r.versionKey(ownerID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, r.fail("version", err)
	}
	return v, nil
}

func (r *Redis) Get(ctx context.Context, ownerID string) (Snapshot, bool, error) {
	vals, err := r.client.MGet(ctx, r.versionKey(ownerID), r.snapshotKey(ownerID)).Result()
	if err != nil {
		return Snapshot{}, false, r.fail("get", err)
	}

	var version int64
	if s, ok := vals[0].(string); ok {
		if version, err = strconv.ParseInt(s, 10, 64); err != nil {
			return Snapshot{}, false, r.fail("get", err)
		}
	}

	raw, ok := vals[1].(string)
	if !ok {
		atomic.AddUint64(&r.stats.Misses, 1)
		return Snapshot{}, false, nil
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, false, r.fail("unmarshal", err)
	}
	if snap.Version != version {
		atomic.AddUint64(&r.stats.Misses, 1)
		return Snapshot{}, false, nil
	}

	atomic.AddUint64(&r.stats.Hits, 1)
	return snap, true, nil
}

// Put writes snap only while the owner's version still matches, using a
// WATCH transaction so a concurrent Invalidate wins.
func (r *Redis) Put(ctx context.Context, ownerID string, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return r.fail("marshal", err)
	}

	vkey, skey := r.versionKey(ownerID), r.snapshotKey(ownerID)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != snap.Version {
			atomic.AddUint64(&r.stats.Stale, 1)
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, skey, data, r.ttl)
			return nil
		})
		if err == nil {
			atomic.AddUint64(&r.stats.Sets, 1)
		}
		return err
	}, vkey)

	if err == redis.TxFailedErr {
		// Version moved between WATCH and EXEC; the snapshot is stale anyway.
		atomic.AddUint64(&r.stats.Stale, 1)
		return nil
	}
	if err != nil {
		return r.fail("put", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, ownerID string) (int64, error) {
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, r.versionKey(ownerID))
		pipe.Del(ctx, r.snapshotKey(ownerID))
		return nil
	})
	if err != nil {
		return 0, r.fail("invalidate", err)
	}
	atomic.AddUint64(&r.stats.Bumps, 1)
	return incr.Val(), nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Stats() StatsSnapshot {
	return r.stats.snapshot()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
