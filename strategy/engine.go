package strategy

import (
	"sort"
	"strings"
	"sync"

	"trademantra/logger"
)

// kindWeights are the fixed consolidation weights. They sum to 1.0;
// consolidated confidence is the weight-average over the agreeing
// strategies.
var kindWeights = map[Kind]float64{
	KindRSIReversal:        0.30,
	KindMomentumBreakout:   0.25,
	KindBollingerReversion: 0.25,
	KindVWAPIntraday:       0.20,
}

// Engine evaluates every strategy kind over a batch of symbol
// snapshots and consolidates the results.
type Engine struct {
	mu      sync.RWMutex
	params  Params
	balance float64
}

// NewEngine creates a strategy engine. params is normalized; balance is
// the paper-trading account balance used for position sizing.
func NewEngine(params Params, balance float64) *Engine {
	params.Normalize()
	return &Engine{params: params, balance: balance}
}

// Params returns a copy of the current parameters.
func (e *Engine) Params() Params {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.params
}

// SetParams swaps the thresholds, used by config hot reload.
func (e *Engine) SetParams(params Params) {
	params.Normalize()
	e.mu.Lock()
	e.params = params
	e.mu.Unlock()
	logger.Info("strategy parameters updated")
}

// SetBalance updates the account balance used for sizing.
func (e *Engine) SetBalance(balance float64) {
	e.mu.Lock()
	e.balance = balance
	e.mu.Unlock()
}

// EvaluateSymbol runs every strategy kind over one snapshot. A panic in
// one generator is recovered and logged; remaining kinds still run.
func (e *Engine) EvaluateSymbol(snap Snapshot) []*Signal {
	e.mu.RLock()
	params := e.params
	balance := e.balance
	e.mu.RUnlock()

	signals := make([]*Signal, 0, len(AllKinds))
	for _, kind := range AllKinds {
		sig := e.safeGenerate(kind, snap, params)
		if sig == nil {
			continue
		}
		sig.Quantity = PositionSize(balance, params.RiskFraction, params.StopLossFraction, sig.Price)
		signals = append(signals, sig)
	}
	return signals
}

func (e *Engine) safeGenerate(kind Kind, snap Snapshot, params Params) (sig *Signal) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("strategy %s panicked on %s: %v, skipping", kind, snap.Symbol, r)
			sig = nil
		}
	}()
	return Generate(kind, snap, params)
}

// Evaluate runs the full batch. A failure on one symbol never aborts
// the rest; consolidation is applied across the per-symbol results.
func (e *Engine) Evaluate(snapshots []Snapshot) []*Signal {
	raw := make([]*Signal, 0)
	for _, snap := range snapshots {
		if snap.Symbol == "" {
			logger.Warn("skipping snapshot with empty symbol")
			continue
		}
		raw = append(raw, e.EvaluateSymbol(snap)...)
	}
	return Consolidate(raw)
}

// Consolidate groups signals by (symbol, action) and emits one
// consolidated signal per group where at least two strategies agree.
// Confidence is the weight-average of the agreeing strategies using
// the fixed per-kind weights.
func Consolidate(signals []*Signal) []*Signal {
	type key struct {
		symbol string
		action Action
	}

	groups := make(map[key][]*Signal)
	order := make([]key, 0)
	for _, sig := range signals {
		k := key{sig.Symbol, sig.Action}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], sig)
	}

	result := make([]*Signal, 0, len(order))
	for _, k := range order {
		group := groups[k]
		if len(group) < 2 {
			continue
		}

		weightSum := 0.0
		weighted := 0.0
		names := make([]string, 0, len(group))
		for _, sig := range group {
			kind, err := ParseKind(sig.Strategy)
			if err != nil {
				logger.Warn("consolidation skipping unknown strategy %s", sig.Strategy)
				continue
			}
			w := kindWeights[kind]
			weightSum += w
			weighted += sig.Confidence * w
			names = append(names, sig.Strategy)
		}
		if len(names) < 2 || weightSum == 0 {
			continue
		}
		sort.Strings(names)

		first := group[0]
		consolidated := &Signal{
			Symbol:      k.symbol,
			Action:      k.action,
			Price:       first.Price,
			Quantity:    first.Quantity,
			Confidence:  weighted / weightSum,
			StopLoss:    first.StopLoss,
			TakeProfit:  first.TakeProfit,
			Reason:      "consolidated: " + strings.Join(names, "+"),
			Strategy:    "consolidated",
			GeneratedAt: first.GeneratedAt,
		}
		result = append(result, consolidated)
	}

	return result
}
