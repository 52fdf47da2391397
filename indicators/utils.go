package indicators

import (
	"math"
)

// ========== series building blocks ==========
//
// The helpers below operate on raw float series and return nil when the
// input is shorter than the requested period. The snapshot functions in
// snapshot.go translate nil into the documented neutral defaults; callers
// outside this package should prefer those.

// SMA simple moving average.
func SMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	result := make([]float64, len(values)-period+1)
	sum := 0.0

	for i := 0; i < period; i++ {
		sum += values[i]
	}
	result[0] = sum / float64(period)

	// sliding window for the rest
	for i := period; i < len(values); i++ {
		sum = sum - values[i-period] + values[i]
		result[i-period+1] = sum / float64(period)
	}

	return result
}

// EMA exponential moving average, seeded with the SMA of the first period.
func EMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	result := make([]float64, len(values))
	multiplier := 2.0 / (float64(period) + 1.0)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	result[period-1] = sum / float64(period)

	for i := period; i < len(values); i++ {
		result[i] = (values[i] * multiplier) + (result[i-1] * (1 - multiplier))
	}

	return result[period-1:]
}

// StdDev population standard deviation over a sliding window.
func StdDev(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	result := make([]float64, len(values)-period+1)

	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		mean := Mean(window)
		variance := 0.0
		for _, v := range window {
			diff := v - mean
			variance += diff * diff
		}
		result[i-period+1] = math.Sqrt(variance / float64(period))
	}

	return result
}

// Mean arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Max largest value, 0 for an empty slice.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Min smallest value, 0 for an empty slice.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Sum of all values.
func Sum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

// TrueRange single-bar true range.
func TrueRange(high, low, prevClose float64) float64 {
	tr1 := high - low
	tr2 := math.Abs(high - prevClose)
	tr3 := math.Abs(low - prevClose)
	return math.Max(tr1, math.Max(tr2, tr3))
}

// TrueRangeSeries true range for each bar after the first.
func TrueRangeSeries(highs, lows, closes []float64) []float64 {
	n := len(closes)
	if n < 2 || len(highs) != n || len(lows) != n {
		return nil
	}

	result := make([]float64, n-1)
	for i := 1; i < n; i++ {
		result[i-1] = TrueRange(highs[i], lows[i], closes[i-1])
	}

	return result
}

// HighestHigh rolling maximum of highs.
func HighestHigh(highs []float64, period int) []float64 {
	if period <= 0 || len(highs) < period {
		return nil
	}

	result := make([]float64, len(highs)-period+1)
	for i := period - 1; i < len(highs); i++ {
		high := highs[i-period+1]
		for j := i - period + 2; j <= i; j++ {
			if highs[j] > high {
				high = highs[j]
			}
		}
		result[i-period+1] = high
	}

	return result
}

// LowestLow rolling minimum of lows.
func LowestLow(lows []float64, period int) []float64 {
	if period <= 0 || len(lows) < period {
		return nil
	}

	result := make([]float64, len(lows)-period+1)
	for i := period - 1; i < len(lows); i++ {
		low := lows[i-period+1]
		for j := i - period + 2; j <= i; j++ {
			if lows[j] < low {
				low = lows[j]
			}
		}
		result[i-period+1] = low
	}

	return result
}

// CrossOver reports whether line1 crossed above line2 on the last bar.
func CrossOver(line1, line2 []float64) bool {
	if len(line1) < 2 || len(line2) < 2 {
		return false
	}
	n1, n2 := len(line1), len(line2)
	return line1[n1-2] <= line2[n2-2] && line1[n1-1] > line2[n2-1]
}

// CrossUnder reports whether line1 crossed below line2 on the last bar.
func CrossUnder(line1, line2 []float64) bool {
	if len(line1) < 2 || len(line2) < 2 {
		return false
	}
	n1, n2 := len(line1), len(line2)
	return line1[n1-2] >= line2[n2-2] && line1[n1-1] < line2[n2-1]
}
