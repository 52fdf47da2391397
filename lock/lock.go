// Package lock provides the distributed lock guarding bot ownership
// across instances. Single-instance deployments use the nop lock.
package lock

import (
	"context"
	"time"
)

// DistributedLock serializes bot startup across instances.
type DistributedLock interface {
	// Lock blocks until the lock is acquired or ctx is done.
	Lock(ctx context.Context, key string, ttl time.Duration) error

	// TryLock attempts to acquire without blocking. Returns false when
	// the lock is already held elsewhere.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Unlock releases a held lock.
	Unlock(ctx context.Context, key string) error

	// Extend pushes out the expiry of a held lock.
	Extend(ctx context.Context, key string, ttl time.Duration) error

	// Close releases the backend connection.
	Close() error
}

// NopLock is the single-instance implementation: every acquisition
// succeeds immediately.
type NopLock struct{}

// NewNopLock creates a nop lock.
func NewNopLock() *NopLock {
	return &NopLock{}
}

func (n *NopLock) Lock(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

func (n *NopLock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (n *NopLock) Unlock(ctx context.Context, key string) error {
	return nil
}

func (n *NopLock) Extend(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

func (n *NopLock) Close() error {
	return nil
}
