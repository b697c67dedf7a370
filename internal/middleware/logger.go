package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"stakingfetcher/internal/logger"
)

// RequestLogger logs method, path, status, latency and request id of every
// request once it has been handled. Query strings and bodies are not logged
// since they may carry the API key.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		c.Next()

		logger.L().Info().
			Str("request_id", GetRequestID(c)).
			Str("method", method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Str("client_ip", c.ClientIP()).
			Msg("http_request")
	}
}
