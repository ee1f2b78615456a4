// Package redis provides Redis-based adapters for client session slots and notification queues.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kjsce/kj-connect/internal/ports"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "kjc:client:"

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is a Redis-backed key-value slot for one client.
// Keys are stored as <prefix><key>. A zero TTL means records never expire.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewSessionStore creates a slot whose keys are namespaced by prefix.
func NewSessionStore(client redis.UniversalClient, prefix string, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get returns the value stored under key or ports.ErrNotFound.
// When a TTL is configured, reading refreshes it.
func (s *SessionStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ports.ErrNotFound
	}

	full := s.prefix + key
	var (
		data []byte
		err  error
	)
	if s.ttl > 0 {
		data, err = s.client.GetEx(ctx, full, s.ttl).Bytes()
	} else {
		data, err = s.client.Get(ctx, full).Bytes()
	}
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// Set stores value under key, applying the configured TTL.
func (s *SessionStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return errors.New("session key cannot be empty")
	}
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *SessionStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
