// Package indicators implements the technical indicator library used by
// the signal generators. Series helpers follow the usual nil-on-short
// convention; the snapshot functions return current values with neutral
// defaults so strategy code never has to branch on data availability.
package indicators

// Candle is one OHLCV bar.
type Candle struct {
	Time   int64   // unix timestamp
	Open   float64 // open price
	High   float64 // high price
	Low    float64 // low price
	Close  float64 // close price
	Volume float64 // traded volume
}

// ClosePrices extracts close prices.
func ClosePrices(candles []Candle) []float64 {
	result := make([]float64, len(candles))
	for i, c := range candles {
		result[i] = c.Close
	}
	return result
}

// HighPrices extracts high prices.
func HighPrices(candles []Candle) []float64 {
	result := make([]float64, len(candles))
	for i, c := range candles {
		result[i] = c.High
	}
	return result
}

// LowPrices extracts low prices.
func LowPrices(candles []Candle) []float64 {
	result := make([]float64, len(candles))
	for i, c := range candles {
		result[i] = c.Low
	}
	return result
}

// Volumes extracts volumes.
func Volumes(candles []Candle) []float64 {
	result := make([]float64, len(candles))
	for i, c := range candles {
		result[i] = c.Volume
	}
	return result
}

// TypicalPrice computes (high + low + close) / 3 per bar.
func TypicalPrice(candles []Candle) []float64 {
	result := make([]float64, len(candles))
	for i, c := range candles {
		result[i] = (c.High + c.Low + c.Close) / 3
	}
	return result
}
