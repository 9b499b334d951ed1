// Package ratelimit counts hits per key in fixed windows. The HTTP rate
// limit middleware and the OTP attempt limiter both use it.
//
// Two stores exist: Memory, for a single process, and Redis, which shares
// counters across replicas.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter reports whether one more hit on key fits within max per window.
type Limiter interface {
	Allow(ctx context.Context, key string, max int, window time.Duration) (bool, error)
}

// ─── Memory ──────────────────────────────────────────────────────────────────

type bucket struct {
	count   int
	resetAt time.Time
}

// Memory keeps counters in process memory.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{buckets: map[string]*bucket{}, now: time.Now}
}

func (m *Memory) Allow(_ context.Context, key string, max int, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[key]
	if !ok || now.After(b.resetAt) {
		b = &bucket{resetAt: now.Add(window)}
		m.buckets[key] = b
	}

	b.count++
	return b.count <= max, nil
}

// Sweep drops expired buckets. Run it periodically on long-lived processes.
func (m *Memory) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, b := range m.buckets {
		if now.After(b.resetAt) {
			delete(m.buckets, k)
		}
	}
}

// StartSweeper runs Sweep every interval until ctx is done.
func (m *Memory) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}

// ─── Redis ───────────────────────────────────────────────────────────────────

// The first hit in a window sets the expiry, so the window starts at the
// first request and the key disappears on its own.
var fixedWindow = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// Redis keeps counters in Redis under prefix+key.
type Redis struct {
	rdb    redis.Scripter
	prefix string
}

func NewRedis(rdb redis.Scripter, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) Allow(ctx context.Context, key string, max int, window time.Duration) (bool, error) {
	n, err := fixedWindow.Run(ctx, r.rdb, []string{r.prefix + key}, window.Milliseconds()).Int64()
	if err != nil {
		return true, err
	}
	return n <= int64(max), nil
}
