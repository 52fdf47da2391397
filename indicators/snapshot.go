package indicators

import (
	"math"
)

// ========== snapshot indicators ==========
//
// Current-value indicators with neutral fallbacks. Unlike the series
// helpers these never return nil and never fail: on insufficient input
// each returns its documented default so strategy code can evaluate any
// symbol unconditionally.

// BollingerResult holds the three bands.
type BollingerResult struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// MACDResult holds the MACD line, signal line and histogram.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// StochasticResult holds %K and %D.
type StochasticResult struct {
	K float64
	D float64
}

// RSI computes the Wilder relative strength index over the trailing
// period deltas using simple averages of gains and losses.
// Returns 50 (neutral) when fewer than period+1 prices are available
// and 100 when the average loss is exactly zero.
func RSI(prices []float64, period int) float64 {
	if period <= 0 {
		period = 14
	}
	if len(prices) < period+1 {
		return 50.0
	}

	window := prices[len(prices)-period-1:]
	gainSum := 0.0
	lossSum := 0.0
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gainSum += change
		} else {
			lossSum += -change
		}
	}

	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)

	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// BollingerBands computes SMA ± stdDev standard deviations over the
// trailing period. With fewer than period prices the bands fall back
// to ±2% around the last price.
func BollingerBands(prices []float64, period int, stdDev float64) BollingerResult {
	if period <= 0 {
		period = 20
	}
	if stdDev <= 0 {
		stdDev = 2.0
	}

	if len(prices) < period {
		last := 0.0
		if len(prices) > 0 {
			last = prices[len(prices)-1]
		}
		return BollingerResult{
			Upper:  last * 1.02,
			Middle: last,
			Lower:  last * 0.98,
		}
	}

	window := prices[len(prices)-period:]
	middle := Mean(window)

	variance := 0.0
	for _, p := range window {
		diff := p - middle
		variance += diff * diff
	}
	sigma := math.Sqrt(variance / float64(period))

	return BollingerResult{
		Upper:  middle + stdDev*sigma,
		Middle: middle,
		Lower:  middle - stdDev*sigma,
	}
}

// MACD computes the difference of fast and slow EMAs. The signal line
// is a fixed 0.8 multiple of the MACD line rather than an EMA of it;
// the fixed ratio is kept for compatibility with the original engine
// and must not be replaced without a parameter change upstream.
// Returns zeros when fewer than slow prices are available.
func MACD(prices []float64, fast, slow, signal int) MACDResult {
	if fast <= 0 {
		fast = 12
	}
	if slow <= 0 {
		slow = 26
	}
	if signal <= 0 {
		signal = 9
	}

	if len(prices) < slow {
		return MACDResult{}
	}

	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)
	if fastEMA == nil || slowEMA == nil {
		return MACDResult{}
	}

	macdLine := fastEMA[len(fastEMA)-1] - slowEMA[len(slowEMA)-1]
	signalLine := macdLine * 0.8
	return MACDResult{
		MACD:      macdLine,
		Signal:    signalLine,
		Histogram: macdLine - signalLine,
	}
}

// VWAP computes the volume-weighted average price. Falls back to the
// unweighted mean when volumes are empty, length-mismatched or sum to
// zero. Returns 0 for an empty price series.
func VWAP(prices, volumes []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(volumes) != len(prices) {
		return Mean(prices)
	}

	volumeSum := Sum(volumes)
	if volumeSum == 0 {
		return Mean(prices)
	}

	weighted := 0.0
	for i, p := range prices {
		weighted += p * volumes[i]
	}
	return weighted / volumeSum
}

// Stochastic computes %K over the trailing period, clamped to 50 when
// the high-low range is zero. %D is a fixed 0.9 multiple of %K rather
// than a moving average of it (same compatibility constraint as the
// MACD signal line). Returns the neutral pair {50, 45} when input is
// shorter than the period.
func Stochastic(highs, lows, closes []float64, period int) StochasticResult {
	if period <= 0 {
		period = 14
	}
	n := len(closes)
	if n < period || len(highs) < period || len(lows) < period {
		return StochasticResult{K: 50.0, D: 45.0}
	}

	high := Max(highs[len(highs)-period:])
	low := Min(lows[len(lows)-period:])
	last := closes[n-1]

	k := 50.0
	if high != low {
		k = (last - low) / (high - low) * 100.0
	}

	return StochasticResult{K: k, D: k * 0.9}
}

// ATR computes the Wilder average true range over the trailing period.
// Returns 0 when fewer than period+1 bars are available.
func ATR(highs, lows, closes []float64, period int) float64 {
	if period <= 0 {
		period = 14
	}
	trs := TrueRangeSeries(highs, lows, closes)
	if len(trs) < period {
		return 0
	}

	// Wilder smoothing seeded with the simple average
	atr := Mean(trs[:period])
	for i := period; i < len(trs); i++ {
		atr = (atr*float64(period-1) + trs[i]) / float64(period)
	}
	return atr
}

// ADX computes the average directional index over the trailing period.
// Returns 0 when fewer than 2*period bars are available.
func ADX(highs, lows, closes []float64, period int) float64 {
	if period <= 0 {
		period = 14
	}
	n := len(closes)
	if n < 2*period || len(highs) != n || len(lows) != n {
		return 0
	}

	plusDM := make([]float64, n-1)
	minusDM := make([]float64, n-1)
	trs := make([]float64, n-1)

	for i := 1; i < n; i++ {
		upMove := highs[i] - highs[i-1]
		downMove := lows[i-1] - lows[i]
		if upMove > downMove && upMove > 0 {
			plusDM[i-1] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i-1] = downMove
		}
		trs[i-1] = TrueRange(highs[i], lows[i], closes[i-1])
	}

	// Wilder smoothing
	smooth := func(values []float64) []float64 {
		result := make([]float64, len(values)-period+1)
		sum := Sum(values[:period])
		result[0] = sum
		for i := period; i < len(values); i++ {
			sum = sum - sum/float64(period) + values[i]
			result[i-period+1] = sum
		}
		return result
	}

	smTR := smooth(trs)
	smPlus := smooth(plusDM)
	smMinus := smooth(minusDM)

	dx := make([]float64, len(smTR))
	for i := range smTR {
		if smTR[i] == 0 {
			continue
		}
		plusDI := smPlus[i] / smTR[i] * 100.0
		minusDI := smMinus[i] / smTR[i] * 100.0
		if plusDI+minusDI != 0 {
			dx[i] = math.Abs(plusDI-minusDI) / (plusDI + minusDI) * 100.0
		}
	}

	if len(dx) < period {
		return 0
	}

	adx := Mean(dx[:period])
	for i := period; i < len(dx); i++ {
		adx = (adx*float64(period-1) + dx[i]) / float64(period)
	}
	return adx
}
