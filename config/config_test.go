package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "app:\n  log_level: DEBUG\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.App.LogLevel != "DEBUG" {
		t.Errorf("log level = %s, want DEBUG", cfg.App.LogLevel)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("default database = %s, want sqlite", cfg.Database.Type)
	}
	if cfg.MarketData.Provider != "mock" {
		t.Errorf("default provider = %s, want mock", cfg.MarketData.Provider)
	}
	if cfg.Strategy.Params.RSIPeriod != 14 {
		t.Errorf("strategy params not normalized: %+v", cfg.Strategy.Params)
	}
	if cfg.Tax.Rates.ShortTermRate != 0.15 {
		t.Errorf("default STCG rate = %v, want 0.15", cfg.Tax.Rates.ShortTermRate)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
market_data:
  provider: binance
  symbols: [BTCUSDT, ETHUSDT]
strategy:
  balance: 500000
  params:
    rsi_period: 7
    oversold_level: 25
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.MarketData.Provider != "binance" || len(cfg.MarketData.Symbols) != 2 {
		t.Errorf("market data not applied: %+v", cfg.MarketData)
	}
	if cfg.Strategy.Balance != 500000 {
		t.Errorf("balance = %v, want 500000", cfg.Strategy.Balance)
	}
	if cfg.Strategy.Params.RSIPeriod != 7 || cfg.Strategy.Params.OversoldLevel != 25 {
		t.Errorf("params not applied: %+v", cfg.Strategy.Params)
	}
	// untouched params still get defaults
	if cfg.Strategy.Params.BBPeriod != 20 {
		t.Errorf("bb_period default missing: %+v", cfg.Strategy.Params)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad database", "database:\n  type: mongodb\n"},
		{"bad provider", "market_data:\n  provider: kite\n"},
		{"bad policy", "tax:\n  underfill_policy: ignore\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"bad timezone", "app:\n  timezone: Mars/Olympus\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			if _, err := Load(path); err == nil {
				t.Errorf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}
