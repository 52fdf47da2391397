// Package strategy implements the signal generators and the
// multi-strategy consolidation engine. Each generator is a pure
// function of one symbol's market snapshot plus threshold parameters,
// producing at most one Signal per evaluation.
package strategy

import (
	"fmt"
	"time"

	"trademantra/indicators"
)

// Action is the discrete decision a signal carries.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Kind identifies a strategy variant. The set is closed: dispatch is an
// exhaustive switch, and adding a variant requires touching every
// switch over Kind.
type Kind int

const (
	KindRSIReversal Kind = iota
	KindMomentumBreakout
	KindBollingerReversion
	KindVWAPIntraday
)

// AllKinds lists every strategy variant in evaluation order.
var AllKinds = []Kind{
	KindRSIReversal,
	KindMomentumBreakout,
	KindBollingerReversion,
	KindVWAPIntraday,
}

// String returns the strategy name.
func (k Kind) String() string {
	switch k {
	case KindRSIReversal:
		return "rsi_reversal"
	case KindMomentumBreakout:
		return "momentum_breakout"
	case KindBollingerReversion:
		return "bollinger_reversion"
	case KindVWAPIntraday:
		return "vwap_intraday"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseKind parses a strategy name.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "rsi_reversal":
		return KindRSIReversal, nil
	case "momentum_breakout":
		return KindMomentumBreakout, nil
	case "bollinger_reversion":
		return KindBollingerReversion, nil
	case "vwap_intraday":
		return KindVWAPIntraday, nil
	default:
		return 0, fmt.Errorf("unknown strategy kind: %s", name)
	}
}

// Signal is one trading recommendation. Immutable once produced; a
// fresh value is emitted on every evaluation cycle.
type Signal struct {
	Symbol      string    `json:"symbol"`
	Action      Action    `json:"action"`
	Price       float64   `json:"price"`
	Quantity    int64     `json:"quantity"`
	Confidence  float64   `json:"confidence"` // [0,100]
	StopLoss    float64   `json:"stop_loss,omitempty"`
	TakeProfit  float64   `json:"take_profit,omitempty"`
	Reason      string    `json:"reason"`
	Strategy    string    `json:"strategy"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Snapshot is one symbol's market state at evaluation time.
type Snapshot struct {
	Symbol    string
	LastPrice float64
	Prices    []float64 // closes, ascending by time
	Volumes   []float64
	Highs     []float64
	Lows      []float64
	Hour      int // hour of day in the exchange timezone
}

// SnapshotFromCandles builds a snapshot from OHLCV bars. The last
// candle's close is the snapshot price; at is the evaluation time used
// for the session-window check.
func SnapshotFromCandles(symbol string, candles []indicators.Candle, at time.Time) Snapshot {
	snap := Snapshot{
		Symbol:  symbol,
		Prices:  indicators.ClosePrices(candles),
		Volumes: indicators.Volumes(candles),
		Highs:   indicators.HighPrices(candles),
		Lows:    indicators.LowPrices(candles),
		Hour:    at.Hour(),
	}
	if len(snap.Prices) > 0 {
		snap.LastPrice = snap.Prices[len(snap.Prices)-1]
	}
	return snap
}

// volumeRatio compares the latest volume against the average of the
// trailing window. Returns 1 when there is not enough volume history.
func (s Snapshot) volumeRatio(lookback int) float64 {
	if lookback <= 0 || len(s.Volumes) < lookback+1 {
		return 1.0
	}
	latest := s.Volumes[len(s.Volumes)-1]
	window := s.Volumes[len(s.Volumes)-1-lookback : len(s.Volumes)-1]
	avg := indicators.Mean(window)
	if avg == 0 {
		return 1.0
	}
	return latest / avg
}

// Params holds every strategy threshold. Zero values are replaced with
// the defaults the original engine ships.
type Params struct {
	// RSI reversal
	RSIPeriod       int     `json:"rsi_period" yaml:"rsi_period"`
	OversoldLevel   float64 `json:"oversold_level" yaml:"oversold_level"`
	OverboughtLevel float64 `json:"overbought_level" yaml:"overbought_level"`
	MinVolumeRatio  float64 `json:"min_volume_ratio" yaml:"min_volume_ratio"`

	// momentum breakout
	BreakoutPeriod    int     `json:"breakout_period" yaml:"breakout_period"`
	BreakoutThreshold float64 `json:"breakout_threshold" yaml:"breakout_threshold"`
	VolumeThreshold   float64 `json:"volume_threshold" yaml:"volume_threshold"`
	MinPrice          float64 `json:"min_price" yaml:"min_price"` // penny-stock filter

	// bollinger reversion
	BBPeriod int     `json:"bb_period" yaml:"bb_period"`
	BBStdDev float64 `json:"bb_std_dev" yaml:"bb_std_dev"`
	BBUseRSI bool    `json:"bb_use_rsi" yaml:"bb_use_rsi"`

	// vwap intraday
	VWAPDeviationThreshold float64 `json:"vwap_deviation_threshold" yaml:"vwap_deviation_threshold"`
	VolumeSurgeRatio       float64 `json:"volume_surge_ratio" yaml:"volume_surge_ratio"`
	SessionStartHour       int     `json:"session_start_hour" yaml:"session_start_hour"`
	SessionEndHour         int     `json:"session_end_hour" yaml:"session_end_hour"`

	// risk / sizing
	StopLossFraction   float64 `json:"stop_loss_fraction" yaml:"stop_loss_fraction"`
	TakeProfitFraction float64 `json:"take_profit_fraction" yaml:"take_profit_fraction"`
	RiskFraction       float64 `json:"risk_fraction" yaml:"risk_fraction"`

	// volume lookback shared by the ratio checks
	VolumeLookback int `json:"volume_lookback" yaml:"volume_lookback"`
}

// DefaultParams returns the thresholds the original engine ships.
func DefaultParams() Params {
	return Params{
		RSIPeriod:       14,
		OversoldLevel:   30,
		OverboughtLevel: 70,
		MinVolumeRatio:  1.2,

		BreakoutPeriod:    20,
		BreakoutThreshold: 0.02,
		VolumeThreshold:   1.5,
		MinPrice:          50,

		BBPeriod: 20,
		BBStdDev: 2.0,
		BBUseRSI: true,

		VWAPDeviationThreshold: 0.01,
		VolumeSurgeRatio:       1.5,
		SessionStartHour:       10,
		SessionEndHour:         15,

		StopLossFraction:   0.03,
		TakeProfitFraction: 0.06,
		RiskFraction:       0.02,

		VolumeLookback: 20,
	}
}

// Normalize fills zero-valued fields with defaults.
func (p *Params) Normalize() {
	def := DefaultParams()
	if p.RSIPeriod <= 0 {
		p.RSIPeriod = def.RSIPeriod
	}
	if p.OversoldLevel <= 0 {
		p.OversoldLevel = def.OversoldLevel
	}
	if p.OverboughtLevel <= 0 {
		p.OverboughtLevel = def.OverboughtLevel
	}
	if p.MinVolumeRatio <= 0 {
		p.MinVolumeRatio = def.MinVolumeRatio
	}
	if p.BreakoutPeriod <= 0 {
		p.BreakoutPeriod = def.BreakoutPeriod
	}
	if p.BreakoutThreshold <= 0 {
		p.BreakoutThreshold = def.BreakoutThreshold
	}
	if p.VolumeThreshold <= 0 {
		p.VolumeThreshold = def.VolumeThreshold
	}
	if p.MinPrice <= 0 {
		p.MinPrice = def.MinPrice
	}
	if p.BBPeriod <= 0 {
		p.BBPeriod = def.BBPeriod
	}
	if p.BBStdDev <= 0 {
		p.BBStdDev = def.BBStdDev
	}
	if p.VWAPDeviationThreshold <= 0 {
		p.VWAPDeviationThreshold = def.VWAPDeviationThreshold
	}
	if p.VolumeSurgeRatio <= 0 {
		p.VolumeSurgeRatio = def.VolumeSurgeRatio
	}
	if p.SessionStartHour <= 0 {
		p.SessionStartHour = def.SessionStartHour
	}
	if p.SessionEndHour <= 0 {
		p.SessionEndHour = def.SessionEndHour
	}
	if p.StopLossFraction <= 0 {
		p.StopLossFraction = def.StopLossFraction
	}
	if p.TakeProfitFraction <= 0 {
		p.TakeProfitFraction = def.TakeProfitFraction
	}
	if p.RiskFraction <= 0 {
		p.RiskFraction = def.RiskFraction
	}
	if p.VolumeLookback <= 0 {
		p.VolumeLookback = def.VolumeLookback
	}
}
