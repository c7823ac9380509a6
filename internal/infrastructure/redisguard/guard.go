// Package redisguard shares the unseen-acknowledgement guard across API
// instances through Redis.
package redisguard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard implements actionplan.AckGuard with SET NX and a TTL, so a key
// left behind by a crashed instance expires on its own.
type Guard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewGuard connects to redisURL and checks the connection.
func NewGuard(redisURL string, ttl time.Duration) (*Guard, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewGuardWithClient(client, ttl), nil
}

func NewGuardWithClient(client *redis.Client, ttl time.Duration) *Guard {
	return &Guard{client: client, prefix: "ack:", ttl: ttl}
}

func (g *Guard) key(k string) string { return g.prefix + k }

// Acquire reports true only for the first caller until Release or expiry.
func (g *Guard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(key), 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire ack guard: %w", err)
	}
	return ok, nil
}

func (g *Guard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.key(key)).Err(); err != nil {
		return fmt.Errorf("release ack guard: %w", err)
	}
	return nil
}

func (g *Guard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

func (g *Guard) Close() error {
	return g.client.Close()
}
