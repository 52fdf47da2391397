package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"trademantra/analytics"
	"trademantra/indicators"
	"trademantra/logger"
	"trademantra/storage"
	"trademantra/strategy"
	"trademantra/tax"
)

// ========== signals ==========

type evaluateRequest struct {
	Symbols []string `json:"symbols"`
	UserID  string   `json:"user_id"`
	Persist bool     `json:"persist"`
}

// handleEvaluate runs one on-demand evaluation cycle over the given
// symbols (config symbols when omitted) and returns the consolidated
// signals.
func (s *Server) handleEvaluate(c *gin.Context) {
	var req evaluateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	symbols := req.Symbols
	if len(symbols) == 0 {
		symbols = s.cfg.MarketData.Symbols
	}

	now := time.Now().In(s.cfg.Location())
	snapshots := make([]strategy.Snapshot, 0, len(symbols))
	skipped := make([]string, 0)
	for _, symbol := range symbols {
		candles, err := s.provider.Candles(c.Request.Context(), symbol, s.cfg.MarketData.Interval, s.cfg.MarketData.Limit)
		if err != nil {
			logger.Error("fetch candles for %s: %v, skipping", symbol, err)
			skipped = append(skipped, symbol)
			continue
		}
		snapshots = append(snapshots, strategy.SnapshotFromCandles(symbol, candles, now))
	}

	signals := s.engine.Evaluate(snapshots)

	if req.Persist && req.UserID != "" && s.store != nil {
		records := make([]storage.SignalRecord, 0, len(signals))
		for _, sig := range signals {
			records = append(records, storage.SignalRecord{
				UserID:      req.UserID,
				Symbol:      sig.Symbol,
				Action:      string(sig.Action),
				Price:       sig.Price,
				Quantity:    sig.Quantity,
				Confidence:  sig.Confidence,
				StopLoss:    sig.StopLoss,
				TakeProfit:  sig.TakeProfit,
				Strategy:    sig.Strategy,
				Reason:      sig.Reason,
				GeneratedAt: sig.GeneratedAt,
			})
		}
		if err := s.store.SaveSignals(records); err != nil {
			logger.Error("persist signals: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"signals": signals,
		"skipped": skipped,
	})
}

func (s *Server) handleRecentSignals(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	records, err := s.store.RecentSignals(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": records})
}

// ========== transactions ==========

type transactionRequest struct {
	UserID   string  `json:"user_id" binding:"required"`
	Symbol   string  `json:"symbol" binding:"required"`
	Side     string  `json:"side" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Price    float64 `json:"price" binding:"required,gt=0"`
	Date     string  `json:"date" binding:"required"` // YYYY-MM-DD
}

func (s *Server) handleCreateTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Side != string(tax.SideBuy) && req.Side != string(tax.SideSell) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be BUY or SELL"})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	txn := storage.Transaction{
		UserID:   req.UserID,
		Symbol:   req.Symbol,
		Side:     req.Side,
		Quantity: req.Quantity,
		Price:    req.Price,
		Date:     date,
	}
	if err := s.store.SaveTransaction(&txn); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func (s *Server) handleListTransactions(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	txs, err := s.store.Transactions(userID, c.Query("symbol"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// ========== tax ==========

// handleTaxReport runs FIFO matching over a user's stored history and
// applies the configured rates.
func (s *Server) handleTaxReport(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	policy := tax.UnderfillPolicy(s.cfg.Tax.UnderfillPolicy)
	if v := c.Query("underfill_policy"); v != "" {
		policy = tax.UnderfillPolicy(v)
		if policy != tax.UnderfillZeroBasis && policy != tax.UnderfillReject {
			c.JSON(http.StatusBadRequest, gin.H{"error": "underfill_policy must be zero_basis or reject"})
			return
		}
	}

	stored, err := s.store.Transactions(userID, c.Query("symbol"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	txs := make([]tax.Transaction, 0, len(stored))
	for _, t := range stored {
		txs = append(txs, tax.Transaction{
			Symbol:   t.Symbol,
			Side:     tax.Side(t.Side),
			Quantity: t.Quantity,
			Price:    t.Price,
			Date:     t.Date,
		})
	}

	report, err := tax.NewCalculator(policy).Compute(txs)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":    report,
		"liability": tax.Assess(report, s.cfg.Tax.Rates),
	})
}

// ========== analytics ==========

// handleRiskAnalytics computes the risk metrics over one symbol's
// recent close-to-close returns.
func (s *Server) handleRiskAnalytics(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	candles, err := s.provider.Candles(c.Request.Context(), symbol, s.cfg.MarketData.Interval, s.cfg.MarketData.Limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	returns := analytics.ReturnsFromPrices(indicators.ClosePrices(candles))
	c.JSON(http.StatusOK, gin.H{
		"symbol":  symbol,
		"samples": len(returns),
		"metrics": analytics.Analyze(returns),
	})
}

// ========== bots ==========

type botRequest struct {
	UserID  string   `json:"user_id" binding:"required"`
	BotType string   `json:"bot_type" binding:"required"`
	Symbols []string `json:"symbols"`
}

func (s *Server) handleListBots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bots": s.manager.List()})
}

func (s *Server) handleStartBot(c *gin.Context) {
	var req botRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.manager.Start(c.Request.Context(), req.UserID, req.BotType, req.Symbols); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	status, _ := s.manager.Get(req.UserID, req.BotType)
	c.JSON(http.StatusCreated, status)
}

func (s *Server) handleStopBot(c *gin.Context) {
	var req botRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.manager.Stop(req.UserID, req.BotType); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stopped": true})
}
