// Package marketdata supplies OHLCV history to the bot loops. Paper
// trading runs on the mock random-walk provider; crypto symbols can
// pull real klines from Binance.
package marketdata

import (
	"context"
	"fmt"

	"trademantra/indicators"
)

// Provider fetches candle history for one symbol.
type Provider interface {
	// Name identifies the provider in logs and config.
	Name() string
	// Candles returns up to limit bars, ascending by time.
	Candles(ctx context.Context, symbol string, interval string, limit int) ([]indicators.Candle, error)
}

// New creates a provider by config name: "mock" or "binance".
func New(kind string, opts Options) (Provider, error) {
	switch kind {
	case "", "mock":
		return NewMockProvider(opts.Seed), nil
	case "binance":
		return NewBinanceProvider(opts.APIKey, opts.SecretKey), nil
	default:
		return nil, fmt.Errorf("unknown market data provider: %s", kind)
	}
}

// Options carries provider construction parameters.
type Options struct {
	Seed      int64
	APIKey    string
	SecretKey string
}
