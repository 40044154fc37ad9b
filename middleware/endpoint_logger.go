package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medichain/healthcare-backend/util"
)

// EndpointCallLogger logs each HTTP request as a security/endpoint event.
// It relies on util.SetSecurityLoggerDB having been called during startup so
// events will be persisted to the SecurityLog table.
func EndpointCallLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		id, role, _ := GetSubject(c)

		details := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"raw_path":    c.Request.URL.Path,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"query":       c.Request.URL.RawQuery,
		}

		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventEndpointCall,
			UserID:    id,
			Role:      role,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Message:   c.Request.Method + " " + c.Request.URL.Path,
			Details:   details,
		})
	}
}
