package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterStore tracks request counts inside fixed windows. Incr atomically
// increments the counter for key, starting a new window when none is active,
// and reports the count together with the time left until the window resets.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, reset time.Duration, err error)
}

// RedisStore counts in Redis so ceilings hold across replicas.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Incr uses INCR + PEXPIRE: the first hit in a window sets the expiry, every
// hit reads the remaining TTL for the reset hint.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	count := incr.Val()
	reset := ttl.Val()
	if count == 1 || reset < 0 {
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			return count, window, err
		}
		reset = window
	}
	return count, reset, nil
}

type memoryWindow struct {
	count   int64
	startAt time.Time
}

// MemoryStore is a process-local fallback used when Redis is not configured.
// Counters are best-effort and vanish on restart.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

// Incr increments under a single lock so two concurrent requests can never
// both observe the pre-increment count.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || now.Sub(w.startAt) >= window {
		w = &memoryWindow{startAt: now}
		s.windows[key] = w
	}
	w.count++
	reset := window - now.Sub(w.startAt)
	return w.count, reset, nil
}
