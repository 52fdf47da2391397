package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trademantra/bot"
	"trademantra/config"
	"trademantra/lock"
	"trademantra/logger"
	"trademantra/marketdata"
	"trademantra/metrics"
	"trademantra/notify"
	"trademantra/storage"
	"trademantra/strategy"
	"trademantra/web"
)

// Version is set at build time.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger.Info("🚀 Trade Mantra signal engine starting (version %s)", Version)

	var cfg *config.Config
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Warn("⚠️ config file %s not found, running with defaults", *configPath)
		cfg = config.Default()
	} else {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			logger.Fatal("❌ load config: %v", err)
		}
		logger.Info("✅ config loaded from %s", *configPath)
	}

	logger.SetLevel(logger.ParseLogLevel(cfg.App.LogLevel))
	logger.SetLocation(cfg.Location())
	defer logger.Close()

	// storage
	store, err := storage.Open(storage.Config{
		Type:            cfg.Database.Type,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		logger.Fatal("❌ open storage: %v", err)
	}
	defer store.Close()
	logger.Info("✅ storage ready (%s)", cfg.Database.Type)

	// distributed lock
	locker, err := lock.New(lock.Options{
		RedisEnabled:  cfg.Redis.Enabled,
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("❌ init lock: %v", err)
	}
	defer locker.Close()
	if cfg.Redis.Enabled {
		logger.Info("✅ redis lock connected: %s", cfg.Redis.Addr)
	}

	// market data
	provider, err := marketdata.New(cfg.MarketData.Provider, marketdata.Options{
		Seed:      cfg.MarketData.Seed,
		APIKey:    cfg.MarketData.APIKey,
		SecretKey: cfg.MarketData.SecretKey,
	})
	if err != nil {
		logger.Fatal("❌ init market data: %v", err)
	}
	logger.Info("✅ market data provider: %s", provider.Name())

	// strategy engine
	engine := strategy.NewEngine(cfg.Strategy.Params, cfg.Strategy.Balance)

	// notifications and websocket fan-out
	notifier := notify.NewService(cfg.Notify)
	hub := web.NewHub()
	go hub.Run()

	sinks := []bot.SignalSink{
		hub.BroadcastSignals,
		func(_ string, signals []*strategy.Signal) { notifier.NotifyAll(signals) },
	}

	// bot registry
	manager := bot.NewManager(provider, engine, store, locker,
		cfg.Bot, cfg.MarketData, cfg.Location(), sinks...)
	manager.StartMonitor()
	defer manager.StopAll()

	// system metrics
	collector := metrics.NewSystemCollector(15 * time.Second)
	collector.Start()
	defer collector.Stop()

	// config hot reload: only strategy thresholds apply live
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := os.Stat(*configPath); err == nil {
		watcher, err := config.NewWatcher(*configPath, func(updated *config.Config) {
			engine.SetParams(updated.Strategy.Params)
			engine.SetBalance(updated.Strategy.Balance)
		})
		if err != nil {
			logger.Warn("⚠️ config watcher init failed: %v", err)
		} else if err := watcher.Start(ctx); err != nil {
			logger.Warn("⚠️ config watcher start failed: %v", err)
		}
	}

	// http server
	server := web.NewServer(cfg, engine, provider, store, manager, hub)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("❌ http server: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("⏹️ shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown: %v", err)
	}
	logger.Info("✅ shutdown complete")
}
