// Package config loads and validates the YAML configuration and hot
// reloads strategy parameters on file changes.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"trademantra/strategy"
	"trademantra/tax"
)

// Config is the full application configuration.
type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	MarketData MarketDataConfig `yaml:"market_data"`
	Strategy   StrategyConfig   `yaml:"strategy"`
	Tax        TaxConfig        `yaml:"tax"`
	Bot        BotConfig        `yaml:"bot"`
	Notify     NotifyConfig     `yaml:"notify"`
}

// AppConfig holds process-wide settings.
type AppConfig struct {
	LogLevel string `yaml:"log_level"`
	Timezone string `yaml:"timezone"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host           string  `yaml:"host"`
	Port           int     `yaml:"port"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// DatabaseConfig selects the GORM dialector and pool sizes.
type DatabaseConfig struct {
	Type            string        `yaml:"type"` // sqlite, postgres, mysql
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	LogLevel        string        `yaml:"log_level"`
}

// RedisConfig configures the distributed lock backend. Disabled means
// the in-process nop lock is used.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MarketDataConfig selects the candle provider.
type MarketDataConfig struct {
	Provider  string   `yaml:"provider"` // mock, binance
	Interval  string   `yaml:"interval"`
	Limit     int      `yaml:"limit"`
	Symbols   []string `yaml:"symbols"`
	Seed      int64    `yaml:"seed"` // mock provider only
	APIKey    string   `yaml:"api_key"`
	SecretKey string   `yaml:"secret_key"`
}

// StrategyConfig wraps the strategy thresholds plus the paper balance.
type StrategyConfig struct {
	Balance float64         `yaml:"balance"`
	Params  strategy.Params `yaml:"params"`
}

// TaxConfig selects the underfill policy and rates.
type TaxConfig struct {
	UnderfillPolicy string    `yaml:"underfill_policy"` // zero_basis, reject
	Rates           tax.Rates `yaml:"rates"`
}

// BotConfig controls the evaluation loops.
type BotConfig struct {
	EvalInterval     time.Duration `yaml:"eval_interval"`
	HeartbeatTimeout time.Duration `yaml:"heartbeat_timeout"`
	LockTTL          time.Duration `yaml:"lock_ttl"`
}

// NotifyConfig configures the signal notification channels.
type NotifyConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
}

// TelegramConfig is the bot-token channel.
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// WebhookConfig posts signal JSON to an arbitrary URL.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// Default returns a runnable configuration: mock market data, SQLite
// storage, nop lock.
func Default() *Config {
	cfg := &Config{
		App: AppConfig{
			LogLevel: "INFO",
			Timezone: "Asia/Kolkata",
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			RateLimitRPS:   20,
			RateLimitBurst: 40,
		},
		Database: DatabaseConfig{
			Type:            "sqlite",
			DSN:             "trademantra.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
			LogLevel:        "silent",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		MarketData: MarketDataConfig{
			Provider: "mock",
			Interval: "1d",
			Limit:    100,
			Symbols:  []string{"RELIANCE", "TCS", "INFY", "HDFCBANK"},
		},
		Strategy: StrategyConfig{
			Balance: 100000,
			Params:  strategy.DefaultParams(),
		},
		Tax: TaxConfig{
			UnderfillPolicy: string(tax.UnderfillZeroBasis),
			Rates:           tax.DefaultRates(),
		},
		Bot: BotConfig{
			EvalInterval:     time.Minute,
			HeartbeatTimeout: 5 * time.Minute,
			LockTTL:          2 * time.Minute,
		},
	}
	return cfg
}

// Load reads and validates a YAML config file. Missing fields fall
// back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.App.LogLevel == "" {
		c.App.LogLevel = def.App.LogLevel
	}
	if c.App.Timezone == "" {
		c.App.Timezone = def.App.Timezone
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.RateLimitRPS <= 0 {
		c.Server.RateLimitRPS = def.Server.RateLimitRPS
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = def.Server.RateLimitBurst
	}
	if c.Database.Type == "" {
		c.Database.Type = def.Database.Type
	}
	if c.Database.DSN == "" {
		c.Database.DSN = def.Database.DSN
	}
	if c.MarketData.Provider == "" {
		c.MarketData.Provider = def.MarketData.Provider
	}
	if c.MarketData.Interval == "" {
		c.MarketData.Interval = def.MarketData.Interval
	}
	if c.MarketData.Limit <= 0 {
		c.MarketData.Limit = def.MarketData.Limit
	}
	if len(c.MarketData.Symbols) == 0 {
		c.MarketData.Symbols = def.MarketData.Symbols
	}
	if c.Strategy.Balance <= 0 {
		c.Strategy.Balance = def.Strategy.Balance
	}
	c.Strategy.Params.Normalize()
	if c.Tax.UnderfillPolicy == "" {
		c.Tax.UnderfillPolicy = def.Tax.UnderfillPolicy
	}
	if c.Tax.Rates.ShortTermRate <= 0 {
		c.Tax.Rates = def.Tax.Rates
	}
	if c.Bot.EvalInterval <= 0 {
		c.Bot.EvalInterval = def.Bot.EvalInterval
	}
	if c.Bot.HeartbeatTimeout <= 0 {
		c.Bot.HeartbeatTimeout = def.Bot.HeartbeatTimeout
	}
	if c.Bot.LockTTL <= 0 {
		c.Bot.LockTTL = def.Bot.LockTTL
	}
}

// Validate rejects configurations that cannot start.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Database.Type {
	case "sqlite", "postgres", "postgresql", "mysql":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	switch c.MarketData.Provider {
	case "mock", "binance":
	default:
		return fmt.Errorf("unsupported market data provider: %s", c.MarketData.Provider)
	}

	switch tax.UnderfillPolicy(c.Tax.UnderfillPolicy) {
	case tax.UnderfillZeroBasis, tax.UnderfillReject:
	default:
		return fmt.Errorf("unsupported tax underfill policy: %s", c.Tax.UnderfillPolicy)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis enabled but addr is empty")
	}

	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.App.Timezone, err)
	}

	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
