package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionKey returns the cache key holding the state of a session.
func SessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// SessionCache stores opaque per-session JSON objects with a TTL.
// All calls go straight to Redis; nothing is cached in process.
type SessionCache struct {
	client *Client
}

func NewSessionCache(client *Client) *SessionCache {
	return &SessionCache{client: client}
}

// Exists reports whether key is present and not expired.
func (c *SessionCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("session cache exists: %w", err)
	}
	return n > 0, nil
}

// Set stores value as JSON under key, overwriting any previous value and
// resetting the TTL to expire.
func (c *SessionCache) Set(ctx context.Context, key string, value any, expire time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("session cache marshal: %w", err)
	}

	if err := c.client.Set(ctx, key, data, expire).Err(); err != nil {
		return fmt.Errorf("session cache set: %w", err)
	}
	return nil
}

// Get returns the decoded object stored under key, or nil when the key does
// not exist or has expired.
func (c *SessionCache) Get(ctx context.Context, key string) (map[string]any, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session cache get: %w", err)
	}

	value := map[string]any{}
	if err := json.Unmarshal(val, &value); err != nil {
		return nil, fmt.Errorf("session cache unmarshal: %w", err)
	}
	return value, nil
}

// Touch makes sure a session entry exists, creating an empty object with
// the given TTL when it does not. An existing entry keeps its TTL.
// SETNX keeps the check and the write atomic across concurrent requests
// carrying the same cookie.
func (c *SessionCache) Touch(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	created, err := c.client.SetNX(ctx, SessionKey(sessionID), emptySession, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("session cache touch: %w", err)
	}
	return created, nil
}

var emptySession = []byte("{}")

func (c *SessionCache) Close() error {
	return c.client.Close()
}
