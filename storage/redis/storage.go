// Package redis implements storage.Storage on Redis string keys.
//
// Usage:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	s := redisstorage.New(client, redisstorage.WithPrefix("myapp:"))
//	if err := s.Ping(ctx); err != nil { ... }
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	supremetask "github.com/marwan116/supreme-task"
	"github.com/marwan116/supreme-task/storage"
)

var (
	_ storage.Storage = (*Storage)(nil)
	_ storage.Lister  = (*Storage)(nil)
)

// DefaultPrefix is prepended to every key.
const DefaultPrefix = "supremetask:"

// scanCount is the COUNT hint passed to SCAN.
const scanCount = 200

// Option configures the Storage.
type Option func(*Storage)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Storage) { s.prefix = prefix }
}

// WithTTL expires written keys after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Storage) { s.ttl = ttl }
}

// Storage stores each blob as a Redis string.
type Storage struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// New creates a Redis-backed storage. The caller owns the client lifecycle.
func New(client redis.UniversalClient, opts ...Option) *Storage {
	s := &Storage{client: client, prefix: DefaultPrefix}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Name returns "redis".
func (s *Storage) Name() string { return "redis" }

// Client returns the underlying Redis client.
func (s *Storage) Client() redis.UniversalClient { return s.client }

// Ping verifies the Redis connection is alive.
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// WritePath stores data at prefix+key.
func (s *Storage) WritePath(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.redisKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: write %q: %w", key, err)
	}
	return nil
}

// ReadPath returns the data at prefix+key.
func (s *Storage) ReadPath(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", supremetask.ErrKeyNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis: read %q: %w", key, err)
	}
	return data, nil
}

// List scans for keys under dir.
func (s *Storage) List(ctx context.Context, dir string) ([]string, error) {
	pattern := escapeGlob(s.redisKey(strings.TrimSuffix(dir, "/")+"/")) + "*"

	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis: list %q: %w", dir, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Storage) redisKey(key string) string { return s.prefix + key }

// escapeGlob quotes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
