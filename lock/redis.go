package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLock implements DistributedLock over a single Redis instance.
// Each acquisition stores a random token; release and extend run Lua
// scripts so only the holder can touch the key.
type RedisLock struct {
	client *redis.Client
	prefix string
	mu     sync.Mutex
	tokens map[string]string // key -> held token
}

// NewRedisLock creates a Redis-backed lock with the given key prefix.
func NewRedisLock(client *redis.Client, prefix string) *RedisLock {
	return &RedisLock{
		client: client,
		prefix: prefix,
		tokens: make(map[string]string),
	}
}

func generateToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Lock retries every 100ms until acquired or ctx is done.
func (r *RedisLock) Lock(ctx context.Context, key string, ttl time.Duration) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		ok, err := r.TryLock(ctx, key, ttl)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// TryLock attempts one SETNX.
func (r *RedisLock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := generateToken()

	ok, err := r.client.SetNX(ctx, r.prefix+key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	if ok {
		r.mu.Lock()
		r.tokens[key] = token
		r.mu.Unlock()
	}
	return ok, nil
}

// Unlock deletes the key only when the stored token matches.
func (r *RedisLock) Unlock(ctx context.Context, key string) error {
	r.mu.Lock()
	token, held := r.tokens[key]
	r.mu.Unlock()
	if !held {
		return fmt.Errorf("lock not held: %s", key)
	}

	script := `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`
	result, err := r.client.Eval(ctx, script, []string{r.prefix + key}, token).Result()
	if err != nil {
		return fmt.Errorf("redis eval: %w", err)
	}
	if result.(int64) == 0 {
		return fmt.Errorf("lock not held or expired: %s", key)
	}

	r.mu.Lock()
	delete(r.tokens, key)
	r.mu.Unlock()
	return nil
}

// Extend refreshes the TTL only when the stored token matches.
func (r *RedisLock) Extend(ctx context.Context, key string, ttl time.Duration) error {
	r.mu.Lock()
	token, held := r.tokens[key]
	r.mu.Unlock()
	if !held {
		return fmt.Errorf("lock not held: %s", key)
	}

	script := `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`
	result, err := r.client.Eval(ctx, script, []string{r.prefix + key}, token, ttl.Milliseconds()).Result()
	if err != nil {
		return fmt.Errorf("redis eval: %w", err)
	}
	if result.(int64) == 0 {
		return fmt.Errorf("lock not held or expired: %s", key)
	}
	return nil
}

// Close closes the Redis client.
func (r *RedisLock) Close() error {
	return r.client.Close()
}
