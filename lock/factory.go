package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options selects the lock backend.
type Options struct {
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
}

// New returns a Redis lock when enabled, otherwise the nop lock. The
// Redis connection is verified with a ping before use.
func New(opts Options) (DistributedLock, error) {
	if !opts.RedisEnabled {
		return NewNopLock(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "trademantra:lock:"
	}
	return NewRedisLock(client, prefix), nil
}
