// Package web serves the HTTP API: signal evaluation, transaction
// history, tax reports, risk analytics, bot control, metrics and the
// websocket signal feed.
package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trademantra/bot"
	"trademantra/config"
	"trademantra/logger"
	"trademantra/marketdata"
	"trademantra/storage"
	"trademantra/strategy"
)

// Server wires the API handlers to the application services.
type Server struct {
	cfg      *config.Config
	engine   *strategy.Engine
	provider marketdata.Provider
	store    *storage.Store
	manager  *bot.Manager
	hub      *Hub

	httpServer *http.Server
}

// NewServer builds the server and its router.
func NewServer(
	cfg *config.Config,
	engine *strategy.Engine,
	provider marketdata.Provider,
	store *storage.Store,
	manager *bot.Manager,
	hub *Hub,
) *Server {
	s := &Server{
		cfg:      cfg,
		engine:   engine,
		provider: provider,
		store:    store,
		manager:  manager,
		hub:      hub,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogMiddleware())
	s.setupRoutes(router)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}
	return s
}

func (s *Server) setupRoutes(r *gin.Engine) {
	r.GET("/api/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", s.hub.handleWebSocket)

	api := r.Group("/api")
	api.Use(rateLimitMiddleware(s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst))
	{
		api.POST("/signals/evaluate", s.handleEvaluate)
		api.GET("/signals", s.handleRecentSignals)

		api.POST("/transactions", s.handleCreateTransaction)
		api.GET("/transactions", s.handleListTransactions)

		api.GET("/tax/report", s.handleTaxReport)
		api.GET("/analytics/risk", s.handleRiskAnalytics)

		api.GET("/bots", s.handleListBots)
		api.POST("/bots/start", s.handleStartBot)
		api.POST("/bots/stop", s.handleStopBot)
	}

	// debug endpoints; restrict at the proxy in production
	debug := r.Group("/debug/pprof")
	{
		debug.GET("/", gin.WrapF(pprof.Index))
		debug.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		debug.GET("/profile", gin.WrapF(pprof.Profile))
		debug.GET("/symbol", gin.WrapF(pprof.Symbol))
		debug.GET("/trace", gin.WrapF(pprof.Trace))
		debug.GET("/heap", gin.WrapH(pprof.Handler("heap")))
		debug.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
	}
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	logger.Info("http server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"time":       time.Now().Format(time.RFC3339),
		"ws_clients": s.hub.ClientCount(),
		"bots":       len(s.manager.List()),
	})
}
