package marker

import (
	"context"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// Redis keeps markers as keys under a prefix, for installations where the
// front-end and monitoring run on another host.
type Redis struct {
	client *backend.Client
	prefix string
}

// NewRedis returns a store for keys named prefix+key.
func NewRedis(client *backend.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

// Exists checks for the key.
func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", r.key(key), err)
	}
	return n > 0, nil
}

// Create sets the key with no expiry.
func (r *Redis) Create(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(key), "1", 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key(key), err)
	}
	return nil
}

// Remove deletes the key.
func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", r.key(key), err)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
