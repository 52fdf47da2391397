package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"trademantra/logger"
)

// rateLimitMiddleware applies a global token bucket to the API group.
func rateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// requestLogMiddleware logs method, path, status and latency.
func requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		if status >= 500 {
			logger.Error("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, latency)
		} else {
			logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, latency)
		}
	}
}
