package marketdata

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"trademantra/indicators"
)

// MockProvider generates deterministic random-walk OHLCV series for
// paper trading. The walk is seeded per (seed, symbol) so repeated
// calls for the same symbol return the same history.
type MockProvider struct {
	seed int64
	mu   sync.Mutex
}

// NewMockProvider creates a mock provider. A zero seed uses the
// current time, making each process run unique.
func NewMockProvider(seed int64) *MockProvider {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MockProvider{seed: seed}
}

// Name identifies the provider.
func (m *MockProvider) Name() string {
	return "mock"
}

// Candles returns a random-walk series anchored at a per-symbol base
// price. Context is accepted for interface symmetry; generation never
// blocks.
func (m *MockProvider) Candles(_ context.Context, symbol string, interval string, limit int) ([]indicators.Candle, error) {
	if limit <= 0 {
		limit = 100
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rng := rand.New(rand.NewSource(m.seed ^ int64(symbolHash(symbol))))

	step := intervalDuration(interval)
	base := 100 + float64(symbolHash(symbol)%4000)
	price := base

	now := time.Now().Truncate(step)
	start := now.Add(-time.Duration(limit) * step)

	candles := make([]indicators.Candle, 0, limit)
	for i := 0; i < limit; i++ {
		open := price
		drift := (rng.Float64() - 0.5) * 0.02 * price
		close := open + drift

		high := open
		if close > high {
			high = close
		}
		high += rng.Float64() * 0.005 * price

		low := open
		if close < low {
			low = close
		}
		low -= rng.Float64() * 0.005 * price

		candles = append(candles, indicators.Candle{
			Time:   start.Add(time.Duration(i) * step).Unix(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: 1000 + rng.Float64()*9000,
		})
		price = close
	}

	return candles, nil
}

func symbolHash(symbol string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return h.Sum32()
}

func intervalDuration(interval string) time.Duration {
	switch interval {
	case "1m":
		return time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "1h":
		return time.Hour
	case "4h":
		return 4 * time.Hour
	case "1d", "":
		return 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}
