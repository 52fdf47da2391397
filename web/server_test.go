package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"trademantra/bot"
	"trademantra/config"
	"trademantra/lock"
	"trademantra/marketdata"
	"trademantra/storage"
	"trademantra/strategy"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.MarketData.Seed = 42

	store, err := storage.Open(storage.Config{
		Type: "sqlite",
		DSN:  filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	engine := strategy.NewEngine(cfg.Strategy.Params, cfg.Strategy.Balance)
	provider := marketdata.NewMockProvider(42)
	hub := NewHub()
	go hub.Run()

	manager := bot.NewManager(provider, engine, store, lock.NewNopLock(),
		cfg.Bot, cfg.MarketData, time.UTC, hub.BroadcastSignals)
	t.Cleanup(manager.StopAll)

	return NewServer(cfg, engine, provider, store, manager, hub)
}

func doRequest(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(t)
	w := doRequest(s, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status field = %v", resp["status"])
	}
}

func TestEvaluateEndpoint(t *testing.T) {
	s := testServer(t)
	w := doRequest(s, http.MethodPost, "/api/signals/evaluate", map[string]interface{}{
		"symbols": []string{"RELIANCE", "TCS"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Signals []strategy.Signal `json:"signals"`
		Skipped []string          `json:"skipped"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Skipped) != 0 {
		t.Errorf("mock provider should never skip: %v", resp.Skipped)
	}
	// consolidated output only
	for _, sig := range resp.Signals {
		if sig.Strategy != "consolidated" {
			t.Errorf("expected only consolidated signals, got %s", sig.Strategy)
		}
	}
}

func TestTransactionsAndTaxReport(t *testing.T) {
	s := testServer(t)

	post := func(body map[string]interface{}) {
		t.Helper()
		w := doRequest(s, http.MethodPost, "/api/transactions", body)
		if w.Code != http.StatusCreated {
			t.Fatalf("create transaction: status = %d, body = %s", w.Code, w.Body.String())
		}
	}

	post(map[string]interface{}{
		"user_id": "u1", "symbol": "RELIANCE", "side": "BUY",
		"quantity": 100, "price": 2400, "date": "2023-04-15",
	})
	post(map[string]interface{}{
		"user_id": "u1", "symbol": "RELIANCE", "side": "SELL",
		"quantity": 100, "price": 2550, "date": "2024-01-15",
	})

	w := doRequest(s, http.MethodGet, "/api/transactions?user_id=u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list transactions: status = %d", w.Code)
	}

	w = doRequest(s, http.MethodGet, "/api/tax/report?user_id=u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tax report: status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Report struct {
			ShortTermGains float64 `json:"short_term_gains"`
		} `json:"report"`
		Liability struct {
			ShortTermTax float64 `json:"short_term_tax"`
		} `json:"liability"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Report.ShortTermGains != 15000 {
		t.Errorf("short-term gains = %v, want 15000", resp.Report.ShortTermGains)
	}
	if resp.Liability.ShortTermTax != 2250 {
		t.Errorf("STCG tax = %v, want 2250", resp.Liability.ShortTermTax)
	}
}

func TestTaxReportRejectPolicy(t *testing.T) {
	s := testServer(t)

	w := doRequest(s, http.MethodPost, "/api/transactions", map[string]interface{}{
		"user_id": "u1", "symbol": "ZOMATO", "side": "SELL",
		"quantity": 10, "price": 120, "date": "2024-02-01",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}

	w = doRequest(s, http.MethodGet, "/api/tax/report?user_id=u1&underfill_policy=reject", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for uncovered sell under reject policy, got %d", w.Code)
	}

	w = doRequest(s, http.MethodGet, "/api/tax/report?user_id=u1&underfill_policy=truncate", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown policy, got %d", w.Code)
	}
}

func TestTransactionValidation(t *testing.T) {
	s := testServer(t)

	w := doRequest(s, http.MethodPost, "/api/transactions", map[string]interface{}{
		"user_id": "u1", "symbol": "X", "side": "HOLD",
		"quantity": 1, "price": 1, "date": "2024-01-01",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad side, got %d", w.Code)
	}

	w = doRequest(s, http.MethodPost, "/api/transactions", map[string]interface{}{
		"user_id": "u1", "symbol": "X", "side": "BUY",
		"quantity": 1, "price": 1, "date": "15-04-2023",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad date, got %d", w.Code)
	}
}

func TestRiskAnalyticsEndpoint(t *testing.T) {
	s := testServer(t)

	w := doRequest(s, http.MethodGet, "/api/analytics/risk?symbol=RELIANCE", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Symbol  string `json:"symbol"`
		Samples int    `json:"samples"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Symbol != "RELIANCE" || resp.Samples == 0 {
		t.Errorf("unexpected response: %+v", resp)
	}

	w = doRequest(s, http.MethodGet, "/api/analytics/risk", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without symbol, got %d", w.Code)
	}
}

func TestBotLifecycleEndpoints(t *testing.T) {
	s := testServer(t)

	w := doRequest(s, http.MethodPost, "/api/bots/start", map[string]interface{}{
		"user_id": "u1", "bot_type": "swing", "symbols": []string{"RELIANCE"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("start bot: status = %d, body = %s", w.Code, w.Body.String())
	}

	// duplicate start conflicts
	w = doRequest(s, http.MethodPost, "/api/bots/start", map[string]interface{}{
		"user_id": "u1", "bot_type": "swing",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate start, got %d", w.Code)
	}

	w = doRequest(s, http.MethodGet, "/api/bots", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list bots: %d", w.Code)
	}
	var resp struct {
		Bots []bot.Status `json:"bots"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Bots) != 1 {
		t.Errorf("expected 1 bot, got %d", len(resp.Bots))
	}

	w = doRequest(s, http.MethodPost, "/api/bots/stop", map[string]interface{}{
		"user_id": "u1", "bot_type": "swing",
	})
	if w.Code != http.StatusOK {
		t.Errorf("stop bot: %d", w.Code)
	}

	w = doRequest(s, http.MethodPost, "/api/bots/stop", map[string]interface{}{
		"user_id": "u1", "bot_type": "swing",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 stopping a stopped bot, got %d", w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	s := testServer(t)
	s.cfg.Server.RateLimitRPS = 1
	s.cfg.Server.RateLimitBurst = 1

	// rebuild with the tight limit
	s = NewServer(s.cfg, s.engine, s.provider, s.store, s.manager, s.hub)

	first := doRequest(s, http.MethodGet, "/api/bots", nil)
	second := doRequest(s, http.MethodGet, "/api/bots", nil)

	if first.Code != http.StatusOK {
		t.Fatalf("first request: %d", first.Code)
	}
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 on burst exhaustion, got %d", second.Code)
	}
}
