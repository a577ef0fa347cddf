package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store holds serialized aggregation results keyed by request shape.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// MemoryStore keeps results in a process-local TTLCache.
type MemoryStore struct {
	items Cache[string, []byte]
}

func NewMemoryStore(items Cache[string, []byte]) *MemoryStore {
	return &MemoryStore{items: items}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := s.items.Get(key)
	return value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.items.Set(key, value, ttl)
	return nil
}

// NoopStore never stores anything.
type NoopStore struct{}

func (NoopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NoopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }

// GetJSON loads and decodes a cached value.
func GetJSON[T any](ctx context.Context, store Store, key string) (T, bool, error) {
	var out T
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return out, true, nil
}

// SetJSON encodes and stores value.
func SetJSON[T any](ctx context.Context, store Store, key string, value T, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached %s: %w", key, err)
	}
	return store.Set(ctx, key, raw, ttl)
}
