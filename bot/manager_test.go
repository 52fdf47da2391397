package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"trademantra/config"
	"trademantra/lock"
	"trademantra/marketdata"
	"trademantra/strategy"
)

func testManager(t *testing.T, sinks ...SignalSink) *Manager {
	t.Helper()
	cfg := config.Default()
	cfg.Bot.EvalInterval = 50 * time.Millisecond

	engine := strategy.NewEngine(strategy.DefaultParams(), cfg.Strategy.Balance)
	provider := marketdata.NewMockProvider(42)

	return NewManager(provider, engine, nil, lock.NewNopLock(),
		cfg.Bot, cfg.MarketData, time.UTC, sinks...)
}

func TestStartStopBot(t *testing.T) {
	m := testManager(t)

	if err := m.Start(context.Background(), "u1", "swing", []string{"RELIANCE"}); err != nil {
		t.Fatal(err)
	}

	status, ok := m.Get("u1", "swing")
	if !ok || !status.Running {
		t.Fatalf("expected running bot, got %+v ok=%v", status, ok)
	}
	if status.UserID != "u1" || status.BotType != "swing" {
		t.Errorf("status identity wrong: %+v", status)
	}

	if err := m.Stop("u1", "swing"); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Get("u1", "swing"); ok {
		t.Error("bot still registered after stop")
	}
}

func TestDuplicateStartRejected(t *testing.T) {
	m := testManager(t)
	defer m.StopAll()

	if err := m.Start(context.Background(), "u1", "swing", []string{"TCS"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Start(context.Background(), "u1", "swing", []string{"TCS"}); err == nil {
		t.Error("expected duplicate start to fail")
	}
}

func TestBotsAreKeyedPerUserAndType(t *testing.T) {
	m := testManager(t)
	defer m.StopAll()

	ctx := context.Background()
	if err := m.Start(ctx, "u1", "swing", []string{"TCS"}); err != nil {
		t.Fatal(err)
	}
	// same user, different type
	if err := m.Start(ctx, "u1", "intraday", []string{"TCS"}); err != nil {
		t.Fatal(err)
	}
	// different user, same type
	if err := m.Start(ctx, "u2", "swing", []string{"TCS"}); err != nil {
		t.Fatal(err)
	}

	if got := len(m.List()); got != 3 {
		t.Errorf("expected 3 bots, got %d", got)
	}
}

func TestStartRequiresIdentity(t *testing.T) {
	m := testManager(t)
	if err := m.Start(context.Background(), "", "swing", nil); err == nil {
		t.Error("expected error without user id")
	}
	if err := m.Start(context.Background(), "u1", "", nil); err == nil {
		t.Error("expected error without bot type")
	}
}

func TestEvaluationLoopEmitsHeartbeat(t *testing.T) {
	var mu sync.Mutex
	received := 0
	sink := func(userID string, signals []*strategy.Signal) {
		mu.Lock()
		received += len(signals)
		mu.Unlock()
	}

	m := testManager(t, sink)
	defer m.StopAll()

	if err := m.Start(context.Background(), "u1", "swing", []string{"RELIANCE", "TCS"}); err != nil {
		t.Fatal(err)
	}

	// wait for at least two ticks
	time.Sleep(200 * time.Millisecond)

	status, ok := m.Get("u1", "swing")
	if !ok {
		t.Fatal("bot missing")
	}
	if status.Evaluations < 2 {
		t.Errorf("expected at least 2 evaluations, got %d", status.Evaluations)
	}
	if time.Since(status.LastHeartbeat) > time.Second {
		t.Errorf("heartbeat stale: %v", status.LastHeartbeat)
	}
}

func TestStopUnknownBot(t *testing.T) {
	m := testManager(t)
	if err := m.Stop("ghost", "swing"); err == nil {
		t.Error("expected error stopping an unknown bot")
	}
}
