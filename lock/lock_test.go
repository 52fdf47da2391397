package lock

import (
	"context"
	"testing"
	"time"
)

func TestNopLockAlwaysSucceeds(t *testing.T) {
	l := NewNopLock()
	ctx := context.Background()

	if err := l.Lock(ctx, "bot:u1:rsi", time.Minute); err != nil {
		t.Fatal(err)
	}
	ok, err := l.TryLock(ctx, "bot:u1:rsi", time.Minute)
	if err != nil || !ok {
		t.Fatalf("TryLock = %v, %v", ok, err)
	}
	if err := l.Extend(ctx, "bot:u1:rsi", time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := l.Unlock(ctx, "bot:u1:rsi"); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestFactoryDisabledReturnsNop(t *testing.T) {
	l, err := New(Options{RedisEnabled: false})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := l.(*NopLock); !ok {
		t.Errorf("expected NopLock, got %T", l)
	}
}

func TestTokenUniqueness(t *testing.T) {
	a, b := generateToken(), generateToken()
	if a == b {
		t.Error("tokens must be unique")
	}
	if len(a) != 32 {
		t.Errorf("token length = %d, want 32 hex chars", len(a))
	}
}
