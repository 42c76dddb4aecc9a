package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// RequestLogger 为每个请求分配 request id 并输出访问日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", requestID),
		}
		if identity := CurrentIdentity(c); identity != nil {
			fields = append(fields, zap.String("user", identity.Username))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			zap.L().Error("request completed", fields...)
		case status >= 400:
			zap.L().Warn("request completed", fields...)
		default:
			zap.L().Info("request completed", fields...)
		}
	}
}
