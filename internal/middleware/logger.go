package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-Id"

// RequestID tags each request with an id, reusing the caller's when it is a
// valid uuid.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// ZapLogger returns a middleware that logs HTTP requests using zap logger.
// Page and form requests are logged at info level, static assets and
// uploads at debug level.
func ZapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		dur := time.Since(start)

		path := c.Request.URL.Path
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", dur.String(),
			"clientIP", c.ClientIP(),
			"requestID", c.GetString("request_id"),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		if isAssetPath(path) {
			log.Sugar().Debugw("HTTP", fields...)
		} else {
			log.Sugar().Infow("HTTP", fields...)
		}
	}
}

func isAssetPath(path string) bool {
	return path == "/style.css" || path == "/script.js" ||
		path == "/health" || path == "/metrics" ||
		strings.HasPrefix(path, "/uploads/") || strings.HasPrefix(path, "/swagger/")
}
