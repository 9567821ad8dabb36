package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StructuredLogging logs one line per request through zap.
func StructuredLogging(logger *zap.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		requestID := ""
		if param.Keys != nil {
			if id, exists := param.Keys["request_id"]; exists {
				requestID = id.(string)
			}
		}

		// Health checks and metrics scrapes are noise at info level.
		if param.Path == "/healthz" || param.Path == "/metrics" {
			return ""
		}

		logger.Info("http request",
			zap.String("request_id", requestID),
			zap.String("method", param.Method),
			zap.String("path", param.Path),
			zap.Int("status", param.StatusCode),
			zap.Int64("latency_ms", param.Latency.Milliseconds()),
			zap.String("client_ip", param.ClientIP),
			zap.String("error", param.ErrorMessage),
		)

		return ""
	})
}
