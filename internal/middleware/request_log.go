package middleware

import (
	"time"

	"storefront_back_end/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const CtxRequestID = "request_id"

// RequestLogger attribue un identifiant à chaque requête et journalise sa durée
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(CtxRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", requestID),
			zap.Duration("cost", time.Since(start)),
		}
		if userID := c.GetString(CtxUserID); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("❌ "+c.Request.URL.Path, fields...)
		case c.Writer.Status() >= 400:
			log.Warn("⚠️ "+c.Request.URL.Path, fields...)
		default:
			log.Info(c.Request.URL.Path, fields...)
		}
	}
}

// Metrics mesure la durée par route (le template de route, pas le chemin brut)
func Metrics(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
