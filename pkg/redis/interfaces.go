package redis

import (
	"context"
	"time"
)

// Client represents a Redis client interface for testing and abstraction
type Client interface {
	// Set sets a key to a value with an optional TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Del removes keys
	Del(ctx context.Context, keys ...string) error

	// HSetWithTTL writes all fields of a hash and refreshes its TTL in one transaction
	HSetWithTTL(ctx context.Context, key string, fields map[string]interface{}, ttl time.Duration) error

	// HGetAll gets all fields from a hash
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// Ping checks if the connection is alive
	Ping(ctx context.Context) error

	// Close closes the Redis connection
	Close() error
}
