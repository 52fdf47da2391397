// Package bot runs per-user evaluation loops. The registry is keyed by
// (user ID, bot type) with per-bot state, so operations on one user's
// bot never block another's. Bot ownership across instances is guarded
// by the distributed lock.
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trademantra/config"
	"trademantra/lock"
	"trademantra/logger"
	"trademantra/marketdata"
	"trademantra/metrics"
	"trademantra/storage"
	"trademantra/strategy"
)

// SignalSink receives freshly consolidated signals, e.g. the websocket
// hub or the notification service.
type SignalSink func(userID string, signals []*strategy.Signal)

// Status describes one bot for the API.
type Status struct {
	UserID         string    `json:"user_id"`
	BotType        string    `json:"bot_type"`
	Symbols        []string  `json:"symbols"`
	Running        bool      `json:"running"`
	StartedAt      time.Time `json:"started_at"`
	LastHeartbeat  time.Time `json:"last_heartbeat"`
	Evaluations    int64     `json:"evaluations"`
	SignalsEmitted int64     `json:"signals_emitted"`
}

// Bot is one running evaluation loop.
type Bot struct {
	userID  string
	botType string
	symbols []string

	mu             sync.Mutex
	startedAt      time.Time
	lastHeartbeat  time.Time
	evaluations    int64
	signalsEmitted int64

	cancel context.CancelFunc
	done   chan struct{}
}

func (b *Bot) status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Status{
		UserID:         b.userID,
		BotType:        b.botType,
		Symbols:        b.symbols,
		Running:        true,
		StartedAt:      b.startedAt,
		LastHeartbeat:  b.lastHeartbeat,
		Evaluations:    b.evaluations,
		SignalsEmitted: b.signalsEmitted,
	}
}

func (b *Bot) heartbeat() {
	b.mu.Lock()
	b.lastHeartbeat = time.Now()
	b.mu.Unlock()
}

// Manager owns the bot registry.
type Manager struct {
	bots sync.Map // "userID\x00botType" -> *Bot

	provider marketdata.Provider
	engine   *strategy.Engine
	store    *storage.Store
	locker   lock.DistributedLock
	sinks    []SignalSink

	botCfg    config.BotConfig
	marketCfg config.MarketDataConfig
	location  *time.Location

	count   int
	countMu sync.Mutex

	monitorCancel context.CancelFunc
}

// NewManager wires the registry. sinks receive each consolidated
// signal batch after persistence.
func NewManager(
	provider marketdata.Provider,
	engine *strategy.Engine,
	store *storage.Store,
	locker lock.DistributedLock,
	botCfg config.BotConfig,
	marketCfg config.MarketDataConfig,
	location *time.Location,
	sinks ...SignalSink,
) *Manager {
	if location == nil {
		location = time.Local
	}
	return &Manager{
		provider:  provider,
		engine:    engine,
		store:     store,
		locker:    locker,
		sinks:     sinks,
		botCfg:    botCfg,
		marketCfg: marketCfg,
		location:  location,
	}
}

func botKey(userID, botType string) string {
	return userID + "\x00" + botType
}

func lockKey(userID, botType string) string {
	return fmt.Sprintf("bot:%s:%s", userID, botType)
}

// Start launches a bot for (userID, botType) over the given symbols.
// The distributed lock rejects a second instance running the same bot.
func (m *Manager) Start(ctx context.Context, userID, botType string, symbols []string) error {
	if userID == "" || botType == "" {
		return fmt.Errorf("user id and bot type are required")
	}
	if len(symbols) == 0 {
		symbols = m.marketCfg.Symbols
	}

	key := botKey(userID, botType)
	if _, exists := m.bots.Load(key); exists {
		return fmt.Errorf("bot %s/%s already running", userID, botType)
	}

	acquired, err := m.locker.TryLock(ctx, lockKey(userID, botType), m.botCfg.LockTTL)
	if err != nil {
		metrics.RecordLockAcquisition("error")
		return fmt.Errorf("acquire bot lock: %w", err)
	}
	if !acquired {
		metrics.RecordLockAcquisition("busy")
		return fmt.Errorf("bot %s/%s is running on another instance", userID, botType)
	}
	metrics.RecordLockAcquisition("acquired")

	botCtx, cancel := context.WithCancel(context.Background())
	bot := &Bot{
		userID:        userID,
		botType:       botType,
		symbols:       symbols,
		startedAt:     time.Now(),
		lastHeartbeat: time.Now(),
		cancel:        cancel,
		done:          make(chan struct{}),
	}

	if _, loaded := m.bots.LoadOrStore(key, bot); loaded {
		cancel()
		m.unlock(userID, botType)
		return fmt.Errorf("bot %s/%s already running", userID, botType)
	}

	m.adjustCount(1)
	go m.run(botCtx, bot)

	logger.Info("bot started: user=%s type=%s symbols=%v", userID, botType, symbols)
	return nil
}

// Stop cancels a bot's loop and releases its lock.
func (m *Manager) Stop(userID, botType string) error {
	key := botKey(userID, botType)
	value, exists := m.bots.LoadAndDelete(key)
	if !exists {
		return fmt.Errorf("bot %s/%s not running", userID, botType)
	}

	bot := value.(*Bot)
	bot.cancel()
	<-bot.done

	m.adjustCount(-1)
	m.unlock(userID, botType)
	metrics.RemoveBotHeartbeat(userID, botType)

	logger.Info("bot stopped: user=%s type=%s", userID, botType)
	return nil
}

// StopAll shuts down every bot, used on graceful shutdown.
func (m *Manager) StopAll() {
	m.bots.Range(func(key, value interface{}) bool {
		bot := value.(*Bot)
		m.Stop(bot.userID, bot.botType)
		return true
	})
	if m.monitorCancel != nil {
		m.monitorCancel()
	}
}

// List returns the status of every running bot.
func (m *Manager) List() []Status {
	statuses := make([]Status, 0)
	m.bots.Range(func(_, value interface{}) bool {
		statuses = append(statuses, value.(*Bot).status())
		return true
	})
	return statuses
}

// Get returns one bot's status.
func (m *Manager) Get(userID, botType string) (Status, bool) {
	value, exists := m.bots.Load(botKey(userID, botType))
	if !exists {
		return Status{}, false
	}
	return value.(*Bot).status(), true
}

func (m *Manager) unlock(userID, botType string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.locker.Unlock(ctx, lockKey(userID, botType)); err != nil {
		logger.Warn("release bot lock %s/%s: %v", userID, botType, err)
	}
}

func (m *Manager) adjustCount(delta int) {
	m.countMu.Lock()
	m.count += delta
	metrics.SetActiveBots(m.count)
	m.countMu.Unlock()
}

// run is the evaluation loop: fetch candles, evaluate, persist, fan
// out. The loop extends the distributed lock on each tick.
func (m *Manager) run(ctx context.Context, bot *Bot) {
	defer close(bot.done)

	ticker := time.NewTicker(m.botCfg.EvalInterval)
	defer ticker.Stop()

	m.evaluate(ctx, bot)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.locker.Extend(ctx, lockKey(bot.userID, bot.botType), m.botCfg.LockTTL); err != nil {
				logger.Warn("extend bot lock %s/%s: %v", bot.userID, bot.botType, err)
			}
			m.evaluate(ctx, bot)
		}
	}
}

func (m *Manager) evaluate(ctx context.Context, bot *Bot) {
	now := time.Now().In(m.location)
	snapshots := make([]strategy.Snapshot, 0, len(bot.symbols))

	for _, symbol := range bot.symbols {
		start := time.Now()
		candles, err := m.provider.Candles(ctx, symbol, m.marketCfg.Interval, m.marketCfg.Limit)
		if err != nil {
			// one symbol failing must not stop the rest
			logger.Error("fetch candles for %s: %v, skipping", symbol, err)
			metrics.RecordEvaluationError(symbol)
			continue
		}
		snap := strategy.SnapshotFromCandles(symbol, candles, now)
		snapshots = append(snapshots, snap)

		metrics.RecordEvaluation(symbol, time.Since(start))
		metrics.SetLastPrice(symbol, snap.LastPrice)
	}

	signals := m.engine.Evaluate(snapshots)

	bot.mu.Lock()
	bot.evaluations++
	bot.signalsEmitted += int64(len(signals))
	bot.mu.Unlock()
	bot.heartbeat()

	if len(signals) == 0 {
		return
	}

	for _, sig := range signals {
		metrics.RecordSignal(sig.Symbol, string(sig.Action), sig.Strategy)
	}

	if m.store != nil {
		records := make([]storage.SignalRecord, 0, len(signals))
		for _, sig := range signals {
			records = append(records, storage.SignalRecord{
				UserID:      bot.userID,
				Symbol:      sig.Symbol,
				Action:      string(sig.Action),
				Price:       sig.Price,
				Quantity:    sig.Quantity,
				Confidence:  sig.Confidence,
				StopLoss:    sig.StopLoss,
				TakeProfit:  sig.TakeProfit,
				Strategy:    sig.Strategy,
				Reason:      sig.Reason,
				GeneratedAt: sig.GeneratedAt,
			})
		}
		if err := m.store.SaveSignals(records); err != nil {
			logger.Error("persist signals for %s: %v", bot.userID, err)
		}
	}

	for _, sink := range m.sinks {
		sink(bot.userID, signals)
	}
}

// StartMonitor launches the heartbeat monitor. Stale bots are logged
// and their staleness published as a gauge.
func (m *Manager) StartMonitor() {
	ctx, cancel := context.WithCancel(context.Background())
	m.monitorCancel = cancel

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.checkHeartbeats()
			}
		}
	}()
}

func (m *Manager) checkHeartbeats() {
	m.bots.Range(func(_, value interface{}) bool {
		bot := value.(*Bot)
		bot.mu.Lock()
		age := time.Since(bot.lastHeartbeat)
		bot.mu.Unlock()

		metrics.SetBotHeartbeatAge(bot.userID, bot.botType, age)
		if age > m.botCfg.HeartbeatTimeout {
			logger.Warn("bot %s/%s heartbeat stale for %s", bot.userID, bot.botType, age.Truncate(time.Second))
		}
		return true
	})
}
