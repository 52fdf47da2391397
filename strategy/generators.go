package strategy

import (
	"fmt"
	"math"
	"time"

	"trademantra/indicators"
)

// ========== signal generators ==========

// Generate applies one strategy kind to a snapshot. Returns nil when
// the rule does not fire. The switch is exhaustive over Kind.
func Generate(kind Kind, snap Snapshot, params Params) *Signal {
	switch kind {
	case KindRSIReversal:
		return generateRSIReversal(snap, params)
	case KindMomentumBreakout:
		return generateMomentumBreakout(snap, params)
	case KindBollingerReversion:
		return generateBollingerReversion(snap, params)
	case KindVWAPIntraday:
		return generateVWAPIntraday(snap, params)
	default:
		return nil
	}
}

// generateRSIReversal buys oversold symbols on above-average volume and
// sells overbought ones. The sell side deliberately has no volume gate;
// exits should not wait for volume confirmation.
func generateRSIReversal(snap Snapshot, params Params) *Signal {
	rsi := indicators.RSI(snap.Prices, params.RSIPeriod)
	volumeRatio := snap.volumeRatio(params.VolumeLookback)

	if rsi <= params.OversoldLevel && volumeRatio >= params.MinVolumeRatio {
		// confidence grows linearly as RSI falls below the threshold
		confidence := clampConfidence(50 + (params.OversoldLevel-rsi)*2)
		return newSignal(snap, ActionBuy, confidence, KindRSIReversal, params,
			fmt.Sprintf("RSI %.1f below oversold %.1f with volume ratio %.2f", rsi, params.OversoldLevel, volumeRatio))
	}

	if rsi >= params.OverboughtLevel {
		confidence := clampConfidence(50 + (rsi-params.OverboughtLevel)*2)
		return newSignal(snap, ActionSell, confidence, KindRSIReversal, params,
			fmt.Sprintf("RSI %.1f above overbought %.1f", rsi, params.OverboughtLevel))
	}

	return nil
}

// generateMomentumBreakout buys closes above the rolling high with a
// volume surge. MinPrice filters out penny stocks.
func generateMomentumBreakout(snap Snapshot, params Params) *Signal {
	if len(snap.Prices) < params.BreakoutPeriod+1 {
		return nil
	}
	if snap.LastPrice < params.MinPrice {
		return nil
	}

	// high of the window preceding the current bar
	window := snap.Prices[len(snap.Prices)-1-params.BreakoutPeriod : len(snap.Prices)-1]
	periodHigh := indicators.Max(window)
	volumeRatio := snap.volumeRatio(params.VolumeLookback)

	trigger := periodHigh * (1 + params.BreakoutThreshold)
	if snap.LastPrice >= trigger && volumeRatio >= params.VolumeThreshold {
		excess := (snap.LastPrice/trigger - 1) * 100
		confidence := clampConfidence(60 + excess*10)
		return newSignal(snap, ActionBuy, confidence, KindMomentumBreakout, params,
			fmt.Sprintf("price %.2f broke %d-bar high %.2f with volume ratio %.2f", snap.LastPrice, params.BreakoutPeriod, periodHigh, volumeRatio))
	}

	return nil
}

// generateBollingerReversion buys at the lower band and sells at the
// upper, optionally gated by RSI agreement.
func generateBollingerReversion(snap Snapshot, params Params) *Signal {
	bands := indicators.BollingerBands(snap.Prices, params.BBPeriod, params.BBStdDev)
	if bands.Middle == 0 {
		return nil
	}

	rsi := indicators.RSI(snap.Prices, params.RSIPeriod)

	if snap.LastPrice <= bands.Lower {
		if params.BBUseRSI && rsi > params.OversoldLevel {
			return nil
		}
		depth := 0.0
		if bands.Middle != bands.Lower {
			depth = (bands.Lower - snap.LastPrice) / (bands.Middle - bands.Lower) * 100
		}
		confidence := clampConfidence(55 + depth)
		return newSignal(snap, ActionBuy, confidence, KindBollingerReversion, params,
			fmt.Sprintf("price %.2f at/below lower band %.2f (RSI %.1f)", snap.LastPrice, bands.Lower, rsi))
	}

	if snap.LastPrice >= bands.Upper {
		if params.BBUseRSI && rsi < params.OverboughtLevel {
			return nil
		}
		height := 0.0
		if bands.Upper != bands.Middle {
			height = (snap.LastPrice - bands.Upper) / (bands.Upper - bands.Middle) * 100
		}
		confidence := clampConfidence(55 + height)
		return newSignal(snap, ActionSell, confidence, KindBollingerReversion, params,
			fmt.Sprintf("price %.2f at/above upper band %.2f (RSI %.1f)", snap.LastPrice, bands.Upper, rsi))
	}

	return nil
}

// generateVWAPIntraday trades percentage deviation from VWAP, only
// inside the configured session window and only on a volume surge.
func generateVWAPIntraday(snap Snapshot, params Params) *Signal {
	if snap.Hour < params.SessionStartHour || snap.Hour >= params.SessionEndHour {
		return nil
	}

	vwap := indicators.VWAP(snap.Prices, snap.Volumes)
	if vwap == 0 {
		return nil
	}

	volumeRatio := snap.volumeRatio(params.VolumeLookback)
	if volumeRatio < params.VolumeSurgeRatio {
		return nil
	}

	deviation := (snap.LastPrice - vwap) / vwap

	if deviation <= -params.VWAPDeviationThreshold {
		confidence := clampConfidence(50 + math.Abs(deviation)*1000)
		return newSignal(snap, ActionBuy, confidence, KindVWAPIntraday, params,
			fmt.Sprintf("price %.2f is %.2f%% below VWAP %.2f on volume surge %.2f", snap.LastPrice, deviation*100, vwap, volumeRatio))
	}

	if deviation >= params.VWAPDeviationThreshold {
		confidence := clampConfidence(50 + deviation*1000)
		return newSignal(snap, ActionSell, confidence, KindVWAPIntraday, params,
			fmt.Sprintf("price %.2f is %.2f%% above VWAP %.2f on volume surge %.2f", snap.LastPrice, deviation*100, vwap, volumeRatio))
	}

	return nil
}

// newSignal fills the common fields. Stop loss and take profit are
// fractions of the entry price, inverted for sells.
func newSignal(snap Snapshot, action Action, confidence float64, kind Kind, params Params, reason string) *Signal {
	sig := &Signal{
		Symbol:      snap.Symbol,
		Action:      action,
		Price:       snap.LastPrice,
		Quantity:    1,
		Confidence:  confidence,
		Reason:      reason,
		Strategy:    kind.String(),
		GeneratedAt: time.Now(),
	}

	switch action {
	case ActionBuy:
		sig.StopLoss = snap.LastPrice * (1 - params.StopLossFraction)
		sig.TakeProfit = snap.LastPrice * (1 + params.TakeProfitFraction)
	case ActionSell:
		sig.StopLoss = snap.LastPrice * (1 + params.StopLossFraction)
		sig.TakeProfit = snap.LastPrice * (1 - params.TakeProfitFraction)
	}

	return sig
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// PositionSize computes the suggested quantity for a signal:
// floor((balance * riskFraction) / stopLossFraction / price), minimum 1.
// Downstream risk accounting assumes this exact formula.
func PositionSize(balance, riskFraction, stopLossFraction, price float64) int64 {
	if price <= 0 || stopLossFraction <= 0 {
		return 1
	}
	qty := int64(math.Floor(balance * riskFraction / stopLossFraction / price))
	if qty < 1 {
		return 1
	}
	return qty
}
