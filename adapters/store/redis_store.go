package store

import (
	"context"
	"fmt"
	"time"

	"github.com/layer-3/persona/ports"
	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL is how long an idle session hash survives in Redis.
const DefaultSessionTTL = 24 * time.Hour

// RedisStore is a Redis implementation of the Store interface. Each visitor
// session maps to one hash whose TTL is refreshed on every write.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) ports.Store {
	return &RedisStore{
		client: client,
		prefix: "persona:session:",
		ttl:    DefaultSessionTTL,
	}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// Get retrieves a session value from Redis
func (s *RedisStore) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	value, err := s.client.HGet(ctx, s.key(sessionID), key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session key: %w", err)
	}
	return value, true, nil
}

// Set stores a session value in Redis and refreshes the session TTL
func (s *RedisStore) Set(ctx context.Context, sessionID, key, value string) error {
	k := s.key(sessionID)
	if err := s.client.HSet(ctx, k, key, value).Err(); err != nil {
		return fmt.Errorf("failed to write session key: %w", err)
	}
	if err := s.client.Expire(ctx, k, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to refresh session ttl: %w", err)
	}
	return nil
}

// Delete removes a session value from Redis
func (s *RedisStore) Delete(ctx context.Context, sessionID, key string) error {
	if err := s.client.HDel(ctx, s.key(sessionID), key).Err(); err != nil {
		return fmt.Errorf("failed to delete session key: %w", err)
	}
	return nil
}
