// Package analytics computes closed-form risk and performance metrics
// over return series: value at risk, Sharpe/Sortino ratios, volatility
// and drawdown. All functions are pure.
package analytics

import (
	"math"
	"sort"
)

// trading days per year, used for annualization
const tradingDays = 252

// fixed z-scores for the parametric VaR confidence levels
const (
	z95 = 1.645
	z99 = 2.326
)

// RiskMetrics bundles the portfolio risk numbers served by the API.
type RiskMetrics struct {
	VaR95          float64 `json:"var_95"`  // parametric, fraction of portfolio
	VaR99          float64 `json:"var_99"`
	HistoricalVaR95 float64 `json:"historical_var_95"`
	Volatility     float64 `json:"volatility"` // annualized
	SharpeRatio    float64 `json:"sharpe_ratio"`
	SortinoRatio   float64 `json:"sortino_ratio"`
	MaxDrawdown    float64 `json:"max_drawdown"` // fraction, peak to trough
}

// Analyze computes the full metric set over a daily return series.
func Analyze(returns []float64) RiskMetrics {
	return RiskMetrics{
		VaR95:           ParametricVaR(returns, 0.95),
		VaR99:           ParametricVaR(returns, 0.99),
		HistoricalVaR95: HistoricalVaR(returns, 0.95),
		Volatility:      AnnualizedVolatility(returns),
		SharpeRatio:     SharpeRatio(returns, 0),
		SortinoRatio:    SortinoRatio(returns, 0),
		MaxDrawdown:     MaxDrawdownFromReturns(returns),
	}
}

// ParametricVaR computes variance-covariance VaR with a fixed z-score
// (1.645 at 95%, 2.326 at 99%). Returns a positive loss fraction.
func ParametricVaR(returns []float64, confidence float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	z := z95
	if confidence >= 0.99 {
		z = z99
	}

	mean := mean(returns)
	sigma := stdDev(returns, mean)
	v := -(mean - z*sigma)
	if v < 0 {
		return 0
	}
	return v
}

// HistoricalVaR takes the empirical loss quantile. Returns a positive
// loss fraction.
func HistoricalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	index := int(float64(len(sorted)) * (1 - confidence))
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	if index < 0 {
		index = 0
	}

	return math.Abs(sorted[index])
}

// AnnualizedVolatility is the sample standard deviation of daily
// returns scaled by sqrt(252).
func AnnualizedVolatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	m := mean(returns)
	return stdDev(returns, m) * math.Sqrt(tradingDays)
}

// SharpeRatio computes the annualized Sharpe ratio against a daily
// risk-free rate. Returns 0 when volatility is zero.
func SharpeRatio(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	m := mean(returns)
	sigma := stdDev(returns, m)
	if sigma == 0 {
		return 0
	}

	return (m - riskFree) / sigma * math.Sqrt(tradingDays)
}

// SortinoRatio is the Sharpe variant penalizing only downside
// deviation. Returns 0 when there is no downside volatility.
func SortinoRatio(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	m := mean(returns)

	downside := 0.0
	for _, r := range returns {
		if r < riskFree {
			diff := r - riskFree
			downside += diff * diff
		}
	}
	downside = math.Sqrt(downside / float64(len(returns)))
	if downside == 0 {
		return 0
	}

	return (m - riskFree) / downside * math.Sqrt(tradingDays)
}

// MaxDrawdownFromReturns rebuilds an equity curve from the returns and
// reports the largest peak-to-trough decline as a positive fraction.
func MaxDrawdownFromReturns(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	equity := 1.0
	peak := 1.0
	maxDD := 0.0
	for _, r := range returns {
		equity *= 1 + r
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			dd := (peak - equity) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// ReturnsFromPrices converts a price series into simple returns.
func ReturnsFromPrices(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}
	return returns
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev sample standard deviation.
func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(len(values)-1))
}
