package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ExactStore is the exact-match tier: a typed wrapper over a remote
// key-value store with per-key TTL. The underlying *redis.Client is a
// thin handle over a connection pool — ExactStore is safe to share
// across many concurrent request tasks without additional locking.
type ExactStore struct {
	client *redis.Client
}

// NewExactStore creates an ExactStore from a redis:// URL. The
// connection is established lazily by the driver; construction never
// blocks on the network.
func NewExactStore(redisURL string) (*ExactStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &ExactStore{client: redis.NewClient(opt)}, nil
}

// Get returns the cached blob for key. It returns ErrNotFound when the
// key is absent or expired, and a wrapped error for any other I/O
// failure — both are treated as transient by the pipeline.
func (s *ExactStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("exact store get: %w", err)
	}
	return val, nil
}

// Set overwrites key with value and resets its TTL to ttl.
func (s *ExactStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("exact store set: %w", err)
	}
	return nil
}

// FlushAll drops every key owned by this proxy. It is an administrative
// operation, not part of the per-request hot path.
func (s *ExactStore) FlushAll(ctx context.Context) error {
	if err := s.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("exact store flush: %w", err)
	}
	return nil
}

// HealthCheck reports whether the store currently answers PING.
func (s *ExactStore) HealthCheck(ctx context.Context) bool {
	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.client.Ping(cctx).Err() == nil
}

// Close releases pooled connections. Call once at shutdown.
func (s *ExactStore) Close() error {
	return s.client.Close()
}
