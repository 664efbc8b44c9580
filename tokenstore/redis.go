package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis persists the token in a Redis cell keyed by device. Intended for
// kiosk and shared-terminal deployments where the "device" identity lives
// on the backend side of the LAN rather than in OS secure storage.
type Redis struct {
	client   *redis.Client
	prefix   string
	deviceID string
	ttl      time.Duration
}

// NewRedis returns a Redis-backed store. prefix namespaces the key space
// (defaults to "gac"); ttl of zero means the token never expires on its own.
func NewRedis(client *redis.Client, prefix, deviceID string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "gac"
	}
	return &Redis{
		client:   client,
		prefix:   prefix,
		deviceID: deviceID,
		ttl:      ttl,
	}
}

func (r *Redis) key() string {
	return fmt.Sprintf("%s:token:%s", r.prefix, r.deviceID)
}

// Get returns the stored token or ErrNotFound.
func (r *Redis) Get(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, r.key()).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get token: %w", err)
	}
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

// Set stores the token, refreshing the TTL. An empty token clears the key.
func (r *Redis) Set(ctx context.Context, token string) error {
	if token == "" {
		return r.Clear(ctx)
	}
	if err := r.client.Set(ctx, r.key(), token, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

// Clear deletes the key. Deleting an absent key is a no-op.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key()).Err(); err != nil {
		return fmt.Errorf("redis clear token: %w", err)
	}
	return nil
}
