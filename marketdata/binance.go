package marketdata

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adshao/go-binance/v2"

	"trademantra/indicators"
)

// BinanceProvider pulls spot klines for crypto symbols.
type BinanceProvider struct {
	client *binance.Client
}

// NewBinanceProvider creates a Binance provider. Keys may be empty:
// kline endpoints are public.
func NewBinanceProvider(apiKey, secretKey string) *BinanceProvider {
	return &BinanceProvider{
		client: binance.NewClient(apiKey, secretKey),
	}
}

// Name identifies the provider.
func (b *BinanceProvider) Name() string {
	return "binance"
}

// Candles fetches historical klines and converts them to candles.
func (b *BinanceProvider) Candles(ctx context.Context, symbol string, interval string, limit int) ([]indicators.Candle, error) {
	if interval == "" {
		interval = "1d"
	}
	if limit <= 0 {
		limit = 100
	}

	klines, err := b.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch klines for %s: %w", symbol, err)
	}

	candles := make([]indicators.Candle, 0, len(klines))
	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		close, _ := strconv.ParseFloat(k.Close, 64)
		volume, _ := strconv.ParseFloat(k.Volume, 64)

		candles = append(candles, indicators.Candle{
			Time:   k.OpenTime / 1000,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: volume,
		})
	}

	return candles, nil
}
