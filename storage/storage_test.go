package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{
		Type: "sqlite",
		DSN:  filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndListTransactions(t *testing.T) {
	store := openTestStore(t)

	txs := []Transaction{
		{UserID: "u1", Symbol: "RELIANCE", Side: "BUY", Quantity: 100, Price: 2400, Date: time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)},
		{UserID: "u1", Symbol: "RELIANCE", Side: "SELL", Quantity: 100, Price: 2550, Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{UserID: "u1", Symbol: "TCS", Side: "BUY", Quantity: 50, Price: 3600, Date: time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC)},
		{UserID: "u2", Symbol: "INFY", Side: "BUY", Quantity: 10, Price: 1500, Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
	for i := range txs {
		if err := store.SaveTransaction(&txs[i]); err != nil {
			t.Fatal(err)
		}
	}

	all, err := store.Transactions("u1", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 transactions for u1, got %d", len(all))
	}
	// ordered by trade date ascending
	if !all[0].Date.Before(all[1].Date) || !all[1].Date.Before(all[2].Date) {
		t.Error("transactions not ordered by date")
	}

	reliance, err := store.Transactions("u1", "RELIANCE")
	if err != nil {
		t.Fatal(err)
	}
	if len(reliance) != 2 {
		t.Errorf("expected 2 RELIANCE transactions, got %d", len(reliance))
	}
}

func TestSaveAndListSignals(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Add(-time.Hour)
	records := []SignalRecord{
		{UserID: "u1", Symbol: "RELIANCE", Action: "BUY", Price: 2400, Quantity: 10, Confidence: 80, Strategy: "rsi_reversal", GeneratedAt: base},
		{UserID: "u1", Symbol: "TCS", Action: "SELL", Price: 3600, Quantity: 5, Confidence: 70, Strategy: "consolidated", GeneratedAt: base.Add(time.Minute)},
	}
	if err := store.SaveSignals(records); err != nil {
		t.Fatal(err)
	}

	got, err := store.RecentSignals("u1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(got))
	}
	// newest first
	if got[0].Symbol != "TCS" {
		t.Errorf("expected newest signal first, got %s", got[0].Symbol)
	}

	if err := store.SaveSignals(nil); err != nil {
		t.Errorf("empty batch must be a no-op, got %v", err)
	}
}

func TestOpenRejectsUnknownType(t *testing.T) {
	if _, err := Open(Config{Type: "mongodb"}); err == nil {
		t.Error("expected error for unsupported database type")
	}
}
