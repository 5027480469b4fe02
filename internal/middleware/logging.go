package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs method, path, status, and duration for every request,
// warning when a request takes longer than 2 seconds.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		entry := logrus.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   duration,
			"remote_ip":  c.ClientIP(),
			"request_id": c.GetString("request_id"),
		})

		if duration > 2*time.Second {
			entry.Warn("Slow request detected")
		} else {
			entry.Info("Request completed")
		}
	}
}
