package tax

import (
	"math"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFullSellSingleLot(t *testing.T) {
	calc := NewCalculator(UnderfillZeroBasis)
	report, err := calc.Compute([]Transaction{
		{Symbol: "RELIANCE", Side: SideBuy, Quantity: 100, Price: 2400, Date: date(2023, 4, 15)},
		{Symbol: "RELIANCE", Side: SideSell, Quantity: 100, Price: 2550, Date: date(2024, 1, 15)},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(report.Records))
	}
	rec := report.Records[0]

	if rec.GainOrLoss != 15000 {
		t.Errorf("gain = %v, want 15000", rec.GainOrLoss)
	}
	if rec.HoldingDays != 275 {
		t.Errorf("holding days = %d, want 275", rec.HoldingDays)
	}
	if rec.Term != TermShort {
		t.Errorf("term = %s, want short", rec.Term)
	}
	if report.ShortTermGains != 15000 || report.LongTermGains != 0 {
		t.Errorf("buckets wrong: %+v", report)
	}
}

func TestShortTermLoss(t *testing.T) {
	calc := NewCalculator(UnderfillZeroBasis)
	report, err := calc.Compute([]Transaction{
		{Symbol: "TCS", Side: SideBuy, Quantity: 50, Price: 3600, Date: date(2023, 6, 10)},
		{Symbol: "TCS", Side: SideSell, Quantity: 50, Price: 3500, Date: date(2023, 8, 20)},
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := report.Records[0]
	if rec.GainOrLoss != -5000 {
		t.Errorf("gain = %v, want -5000", rec.GainOrLoss)
	}
	if rec.HoldingDays != 71 {
		t.Errorf("holding days = %d, want 71", rec.HoldingDays)
	}
	// losses land in the positive-magnitude loss bucket
	if report.ShortTermLosses != 5000 {
		t.Errorf("short-term losses = %v, want 5000", report.ShortTermLosses)
	}
	if report.ShortTermGains != 0 {
		t.Errorf("short-term gains = %v, want 0", report.ShortTermGains)
	}
	if report.NetShortTerm() != -5000 {
		t.Errorf("net short term = %v, want -5000", report.NetShortTerm())
	}
}

func TestHoldingPeriodBoundary(t *testing.T) {
	calc := NewCalculator(UnderfillZeroBasis)

	// exactly 365 days: still short-term
	report, err := calc.Compute([]Transaction{
		{Symbol: "INFY", Side: SideBuy, Quantity: 10, Price: 1000, Date: date(2023, 1, 1)},
		{Symbol: "INFY", Side: SideSell, Quantity: 10, Price: 1100, Date: date(2024, 1, 1)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec := report.Records[0]; rec.HoldingDays != 365 || rec.Term != TermShort {
		t.Errorf("365 days must be short-term, got days=%d term=%s", rec.HoldingDays, rec.Term)
	}

	// 366 days: long-term
	report, err = calc.Compute([]Transaction{
		{Symbol: "INFY", Side: SideBuy, Quantity: 10, Price: 1000, Date: date(2023, 1, 1)},
		{Symbol: "INFY", Side: SideSell, Quantity: 10, Price: 1100, Date: date(2024, 1, 2)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec := report.Records[0]; rec.HoldingDays != 366 || rec.Term != TermLong {
		t.Errorf("366 days must be long-term, got days=%d term=%s", rec.HoldingDays, rec.Term)
	}
}

func TestSellAcrossTwoLots(t *testing.T) {
	calc := NewCalculator(UnderfillZeroBasis)
	report, err := calc.Compute([]Transaction{
		{Symbol: "HDFC", Side: SideBuy, Quantity: 60, Price: 1500, Date: date(2022, 1, 10)},
		{Symbol: "HDFC", Side: SideBuy, Quantity: 40, Price: 1600, Date: date(2023, 11, 5)},
		{Symbol: "HDFC", Side: SideSell, Quantity: 100, Price: 1700, Date: date(2024, 1, 20)},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(report.Records))
	}

	// oldest lot first
	first, second := report.Records[0], report.Records[1]
	if first.Quantity != 60 || first.GainOrLoss != 60*(1700-1500) {
		t.Errorf("first slice wrong: %+v", first)
	}
	if first.Term != TermLong {
		t.Errorf("first slice held > 365 days, must be long-term")
	}
	if second.Quantity != 40 || second.GainOrLoss != 40*(1700-1600) {
		t.Errorf("second slice wrong: %+v", second)
	}
	if second.Term != TermShort {
		t.Errorf("second slice held 76 days, must be short-term")
	}

	if report.LongTermGains != 12000 || report.ShortTermGains != 4000 {
		t.Errorf("buckets wrong: LT=%v ST=%v", report.LongTermGains, report.ShortTermGains)
	}
}

func TestPartialLotConsumption(t *testing.T) {
	calc := NewCalculator(UnderfillZeroBasis)
	report, err := calc.Compute([]Transaction{
		{Symbol: "SBIN", Side: SideBuy, Quantity: 100, Price: 500, Date: date(2024, 2, 1)},
		{Symbol: "SBIN", Side: SideSell, Quantity: 30, Price: 550, Date: date(2024, 3, 1)},
	})
	if err != nil {
		t.Fatal(err)
	}

	if report.Records[0].GainOrLoss != 30*(550-500) {
		t.Errorf("gain wrong: %v", report.Records[0].GainOrLoss)
	}

	lots := report.OpenLots["SBIN"]
	if len(lots) != 1 || lots[0].Quantity != 70 {
		t.Errorf("expected 70 units left open, got %+v", lots)
	}
}

func TestUnsortedInputIsSorted(t *testing.T) {
	calc := NewCalculator(UnderfillReject)

	// sell listed before its buy; date sort must fix the order
	report, err := calc.Compute([]Transaction{
		{Symbol: "WIPRO", Side: SideSell, Quantity: 10, Price: 450, Date: date(2024, 6, 1)},
		{Symbol: "WIPRO", Side: SideBuy, Quantity: 10, Price: 400, Date: date(2024, 1, 1)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if report.Records[0].GainOrLoss != 500 {
		t.Errorf("gain = %v, want 500", report.Records[0].GainOrLoss)
	}
}

func TestUnderfillRejectPolicy(t *testing.T) {
	calc := NewCalculator(UnderfillReject)
	_, err := calc.Compute([]Transaction{
		{Symbol: "ZOMATO", Side: SideBuy, Quantity: 50, Price: 100, Date: date(2024, 1, 1)},
		{Symbol: "ZOMATO", Side: SideSell, Quantity: 80, Price: 120, Date: date(2024, 2, 1)},
	})
	if err == nil {
		t.Fatal("expected an error when a sell exceeds open lots under the reject policy")
	}
}

func TestUnderfillZeroBasisPolicy(t *testing.T) {
	calc := NewCalculator(UnderfillZeroBasis)
	report, err := calc.Compute([]Transaction{
		{Symbol: "ZOMATO", Side: SideBuy, Quantity: 50, Price: 100, Date: date(2024, 1, 1)},
		{Symbol: "ZOMATO", Side: SideSell, Quantity: 80, Price: 120, Date: date(2024, 2, 1)},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(report.Records))
	}

	covered, uncovered := report.Records[0], report.Records[1]
	if covered.GainOrLoss != 50*(120-100) || covered.ZeroBasis {
		t.Errorf("covered slice wrong: %+v", covered)
	}
	if !uncovered.ZeroBasis || uncovered.Quantity != 30 || uncovered.GainOrLoss != 30*120 {
		t.Errorf("uncovered slice must carry full proceeds at zero basis: %+v", uncovered)
	}

	if len(report.Shortfalls) != 1 || report.Shortfalls[0].Quantity != 30 {
		t.Errorf("expected one shortfall of 30 units, got %+v", report.Shortfalls)
	}
}

func TestSymbolsAreIndependent(t *testing.T) {
	calc := NewCalculator(UnderfillZeroBasis)
	report, err := calc.Compute([]Transaction{
		{Symbol: "A", Side: SideBuy, Quantity: 10, Price: 100, Date: date(2024, 1, 1)},
		{Symbol: "B", Side: SideBuy, Quantity: 10, Price: 200, Date: date(2024, 1, 2)},
		{Symbol: "A", Side: SideSell, Quantity: 10, Price: 150, Date: date(2024, 3, 1)},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Records) != 1 || report.Records[0].Symbol != "A" {
		t.Errorf("only symbol A should have realized gains: %+v", report.Records)
	}
	if lots := report.OpenLots["B"]; len(lots) != 1 || lots[0].Quantity != 10 {
		t.Errorf("symbol B lots must be untouched: %+v", lots)
	}
}

func TestAssessDefaults(t *testing.T) {
	report := &Report{
		ShortTermGains: 40000,
		ShortTermLosses: 10000,
		LongTermGains:  250000,
		LongTermLosses: 30000,
	}

	l := Assess(report, DefaultRates())

	// net ST 30000 @ 15% = 4500
	if math.Abs(l.ShortTermTax-4500) > 1e-9 {
		t.Errorf("STCG tax = %v, want 4500", l.ShortTermTax)
	}
	// net LT 220000 - 100000 exemption = 120000 @ 10% = 12000
	if math.Abs(l.LongTermTax-12000) > 1e-9 {
		t.Errorf("LTCG tax = %v, want 12000", l.LongTermTax)
	}
	if math.Abs(l.TotalTax-16500) > 1e-9 {
		t.Errorf("total tax = %v, want 16500", l.TotalTax)
	}
}

func TestAssessNoTaxOnLosses(t *testing.T) {
	report := &Report{ShortTermLosses: 5000, LongTermLosses: 2000}
	l := Assess(report, DefaultRates())
	if l.TotalTax != 0 {
		t.Errorf("net losses must owe no tax, got %v", l.TotalTax)
	}
}

func TestAssessLongTermWithinExemption(t *testing.T) {
	report := &Report{LongTermGains: 90000}
	l := Assess(report, DefaultRates())
	if l.LongTermTax != 0 || l.TaxableLong != 0 {
		t.Errorf("gains under the exemption must owe no LTCG tax, got %+v", l)
	}
}
