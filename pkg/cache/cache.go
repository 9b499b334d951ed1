// Package cache is the read-through cache in front of the plant catalogue.
//
// Values are stored as JSON. A Store backed by Redis is shared by every
// replica; a memory Store serves single-process setups and tests. A Store
// whose Redis is unreachable degrades to misses instead of failing requests.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/planty/pkg/logger"
	"github.com/shashiranjanraj/planty/pkg/metrics"
)

// ErrMiss is returned by backends when the key does not exist.
var ErrMiss = errors.New("cache: miss")

// Backend is the raw byte store under a Store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Driver() string
}

// Store caches JSON values under a key prefix.
type Store struct {
	b      Backend
	prefix string
}

func New(b Backend, prefix string) *Store {
	return &Store{b: b, prefix: prefix}
}

// Connect dials Redis and verifies the connection with a ping.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return rdb, nil
}

// Get unmarshals the cached value into dest and reports a hit.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := s.b.Get(ctx, s.prefix+key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			logger.WithCtx(ctx).Warn("cache get failed", "key", key, "error", err)
		}
		metrics.CacheMisses.WithLabelValues(s.b.Driver()).Inc()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.CacheMisses.WithLabelValues(s.b.Driver()).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(s.b.Driver()).Inc()
	return true
}

// Set stores value under key for ttl.
func (s *Store) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.b.Set(ctx, s.prefix+key, data, ttl)
}

// Forget removes keys.
func (s *Store) Forget(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	return s.b.Del(ctx, full...)
}

// Remember returns the cached value for key, or calls fn, caches its
// result and returns it. Cache write errors are logged, not returned.
//
//	var plants []models.Plant
//	err := store.Remember(ctx, "plants:all", time.Minute, &plants, func() (any, error) {
//	    return repo.FindAll(ctx)
//	})
func (s *Store) Remember(ctx context.Context, key string, ttl time.Duration, dest interface{}, fn func() (interface{}, error)) error {
	if s.Get(ctx, key, dest) {
		return nil
	}

	v, err := fn()
	if err != nil {
		return err
	}
	if err := s.Set(ctx, key, v, ttl); err != nil {
		logger.WithCtx(ctx).Warn("cache set failed", "key", key, "error", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// ─── Redis backend ───────────────────────────────────────────────────────────

type redisBackend struct{ rdb redis.Cmdable }

// NewRedis wraps a go-redis client.
func NewRedis(rdb redis.Cmdable) Backend { return redisBackend{rdb: rdb} }

func (r redisBackend) Driver() string { return "redis" }

func (r redisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (r redisBackend) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, val, ttl).Err()
}

func (r redisBackend) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}

// ─── Memory backend ──────────────────────────────────────────────────────────

type entry struct {
	val       []byte
	expiresAt time.Time
}

type memoryBackend struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

// NewMemory returns an in-process backend.
func NewMemory() Backend {
	return &memoryBackend{items: map[string]entry{}, now: time.Now}
}

func (m *memoryBackend) Driver() string { return "memory" }

func (m *memoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok || (!e.expiresAt.IsZero() && m.now().After(e.expiresAt)) {
		return nil, ErrMiss
	}
	return e.val, nil
}

func (m *memoryBackend) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	e := entry{val: val}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

func (m *memoryBackend) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.items, k)
	}
	m.mu.Unlock()
	return nil
}
