package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPersister keeps the session under a single Redis key, for clients that
// run on shared kiosks and should not write to local disk.
type RedisPersister struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisPersister returns a persister. A zero ttl keeps the key until cleared.
func NewRedisPersister(client *redis.Client, key string, ttl time.Duration) *RedisPersister {
	return &RedisPersister{client: client, key: key, ttl: ttl}
}

// Read implements Persister.
func (p *RedisPersister) Read(ctx context.Context) ([]byte, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

// Write implements Persister.
func (p *RedisPersister) Write(ctx context.Context, data []byte) error {
	return p.client.Set(ctx, p.key, data, p.ttl).Err()
}

// Remove implements Persister.
func (p *RedisPersister) Remove(ctx context.Context) error {
	return p.client.Del(ctx, p.key).Err()
}
