// Package tax implements FIFO capital-gains lot matching and the
// short/long-term tax arithmetic for realized gains.
package tax

import (
	"fmt"
	"sort"
	"time"
)

// Side is the direction of a transaction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Term classifies a matched slice by holding period.
type Term string

const (
	TermShort Term = "short"
	TermLong  Term = "long"
)

// longTermThresholdDays: holdings strictly over this many calendar
// days are long-term. 365 days is short, 366 is long.
const longTermThresholdDays = 365

// UnderfillPolicy decides what happens when a sell exceeds the
// recorded buy history for its symbol. Silent truncation is never an
// option.
type UnderfillPolicy string

const (
	// UnderfillZeroBasis matches the uncovered quantity at zero cost
	// basis and flags the record and the report.
	UnderfillZeroBasis UnderfillPolicy = "zero_basis"
	// UnderfillReject aborts the whole computation with an error.
	UnderfillReject UnderfillPolicy = "reject"
)

// Transaction is one buy or sell.
type Transaction struct {
	Symbol   string    `json:"symbol"`
	Side     Side      `json:"side"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
	Date     time.Time `json:"date"`
}

// Lot is an open buy slice awaiting FIFO consumption.
type Lot struct {
	Quantity   float64
	UnitPrice  float64
	AcquiredAt time.Time
}

// GainRecord is the result of matching one sell slice against one lot.
type GainRecord struct {
	Symbol      string    `json:"symbol"`
	Quantity    float64   `json:"quantity"`
	BuyPrice    float64   `json:"buy_price"`
	SellPrice   float64   `json:"sell_price"`
	GainOrLoss  float64   `json:"gain_or_loss"`
	HoldingDays int       `json:"holding_days"`
	Term        Term      `json:"term"`
	AcquiredAt  time.Time `json:"acquired_at"`
	SoldAt      time.Time `json:"sold_at"`
	ZeroBasis   bool      `json:"zero_basis,omitempty"` // uncovered sell matched at zero cost
}

// Shortfall records sell quantity that had no matching buy lots.
type Shortfall struct {
	Symbol   string    `json:"symbol"`
	Quantity float64   `json:"quantity"`
	SoldAt   time.Time `json:"sold_at"`
}

// Report aggregates realized gains and losses. The four buckets carry
// positive magnitudes; losses are not negated.
type Report struct {
	ShortTermGains  float64      `json:"short_term_gains"`
	ShortTermLosses float64      `json:"short_term_losses"`
	LongTermGains   float64      `json:"long_term_gains"`
	LongTermLosses  float64      `json:"long_term_losses"`
	Records         []GainRecord `json:"records"`
	Shortfalls      []Shortfall  `json:"shortfalls,omitempty"`
	OpenLots        map[string][]Lot `json:"-"`
}

// NetShortTerm returns short-term gains minus losses.
func (r *Report) NetShortTerm() float64 {
	return r.ShortTermGains - r.ShortTermLosses
}

// NetLongTerm returns long-term gains minus losses.
func (r *Report) NetLongTerm() float64 {
	return r.LongTermGains - r.LongTermLosses
}

// Calculator runs FIFO matching over a transaction history.
type Calculator struct {
	policy UnderfillPolicy
}

// NewCalculator creates a calculator. An empty policy defaults to
// zero-basis matching.
func NewCalculator(policy UnderfillPolicy) *Calculator {
	if policy == "" {
		policy = UnderfillZeroBasis
	}
	return &Calculator{policy: policy}
}

// Compute matches sells against the oldest open buy lots per symbol.
// Input order does not matter: transactions are stable-sorted by date
// before processing, so same-date entries keep their relative order.
func (c *Calculator) Compute(transactions []Transaction) (*Report, error) {
	txs := make([]Transaction, len(transactions))
	copy(txs, transactions)
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})

	report := &Report{
		Records:  make([]GainRecord, 0),
		OpenLots: make(map[string][]Lot),
	}

	for _, tx := range txs {
		switch tx.Side {
		case SideBuy:
			report.OpenLots[tx.Symbol] = append(report.OpenLots[tx.Symbol], Lot{
				Quantity:   tx.Quantity,
				UnitPrice:  tx.Price,
				AcquiredAt: tx.Date,
			})

		case SideSell:
			if err := c.matchSell(report, tx); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("unknown transaction side %q for %s", tx.Side, tx.Symbol)
		}
	}

	return report, nil
}

// matchSell consumes lots front-first until the sell quantity is
// covered, then applies the underfill policy to any remainder.
func (c *Calculator) matchSell(report *Report, tx Transaction) error {
	remaining := tx.Quantity
	lots := report.OpenLots[tx.Symbol]

	for remaining > 0 && len(lots) > 0 {
		lot := &lots[0]
		matched := remaining
		if lot.Quantity < matched {
			matched = lot.Quantity
		}

		report.addRecord(newGainRecord(tx, matched, lot.UnitPrice, lot.AcquiredAt, false))

		lot.Quantity -= matched
		remaining -= matched
		if lot.Quantity == 0 {
			lots = lots[1:]
		}
	}
	report.OpenLots[tx.Symbol] = lots

	if remaining > 0 {
		switch c.policy {
		case UnderfillReject:
			return fmt.Errorf("sell of %s on %s exceeds open lots by %.4f units",
				tx.Symbol, tx.Date.Format("2006-01-02"), remaining)
		case UnderfillZeroBasis:
			// uncovered quantity realizes the full sale proceeds as a
			// short-term gain with zero cost basis, flagged for review
			report.addRecord(newGainRecord(tx, remaining, 0, tx.Date, true))
			report.Shortfalls = append(report.Shortfalls, Shortfall{
				Symbol:   tx.Symbol,
				Quantity: remaining,
				SoldAt:   tx.Date,
			})
		default:
			return fmt.Errorf("unknown underfill policy %q", c.policy)
		}
	}

	return nil
}

func newGainRecord(tx Transaction, quantity, buyPrice float64, acquiredAt time.Time, zeroBasis bool) GainRecord {
	days := holdingDays(acquiredAt, tx.Date)
	term := TermShort
	if days > longTermThresholdDays {
		term = TermLong
	}
	return GainRecord{
		Symbol:      tx.Symbol,
		Quantity:    quantity,
		BuyPrice:    buyPrice,
		SellPrice:   tx.Price,
		GainOrLoss:  quantity * (tx.Price - buyPrice),
		HoldingDays: days,
		Term:        term,
		AcquiredAt:  acquiredAt,
		SoldAt:      tx.Date,
		ZeroBasis:   zeroBasis,
	}
}

func (r *Report) addRecord(rec GainRecord) {
	r.Records = append(r.Records, rec)

	amount := rec.GainOrLoss
	switch {
	case rec.Term == TermShort && amount >= 0:
		r.ShortTermGains += amount
	case rec.Term == TermShort:
		r.ShortTermLosses += -amount
	case amount >= 0:
		r.LongTermGains += amount
	default:
		r.LongTermLosses += -amount
	}
}

// holdingDays counts calendar days between acquisition and sale.
func holdingDays(acquired, sold time.Time) int {
	a := time.Date(acquired.Year(), acquired.Month(), acquired.Day(), 0, 0, 0, 0, time.UTC)
	s := time.Date(sold.Year(), sold.Month(), sold.Day(), 0, 0, 0, 0, time.UTC)
	return int(s.Sub(a).Hours() / 24)
}
