package scrapertest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("request_id", c.GetHeader("X-Request-ID")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// errorHandler turns handler panics into the backend's {"detail": ...} shape.
func errorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": "internal server error",
		})
		c.Abort()
	})
}

// faultInjector fails requests while the server is offline or when a route
// has a configured failure status. It also counts hits per route.
func (s *Server) faultInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.Request.Method + " " + c.FullPath()

		s.mu.Lock()
		s.hits[route]++
		offline := s.offline
		status, failing := s.failures[route]
		s.mu.Unlock()

		if offline {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"detail": "Service unavailable"})
			return
		}
		if failing {
			c.AbortWithStatusJSON(status, gin.H{"detail": http.StatusText(status)})
			return
		}
		c.Next()
	}
}
