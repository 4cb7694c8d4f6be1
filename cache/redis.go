package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tuannm99/gluedbapi/statement"
)

// Redis is a Cache backed by a shared Redis instance, for host tools that
// run many workers against the same session pool.
type Redis struct {
	client *redis.Client
}

// NewRedis connects and pings the Redis instance.
func NewRedis(ctx context.Context, opt *redis.Options) (*Redis, error) {
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("gluedbapi: redis ping: %w", err)
	}
	return &Redis{client: client}, nil
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string) (*statement.Payload, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("gluedbapi: redis get: %w", err)
	}

	var p statement.Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, false, fmt.Errorf("gluedbapi: redis payload decode: %w", err)
	}
	return &p, true, nil
}

// Set implements Cache. Redis treats ttl 0 as "no expiration", matching
// the Cache contract.
func (r *Redis) Set(ctx context.Context, key string, p *statement.Payload, ttl time.Duration) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("gluedbapi: redis payload encode: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("gluedbapi: redis set: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
