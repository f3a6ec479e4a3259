package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/julianstephens/habitgrid/internal/habits"
	"github.com/julianstephens/habitgrid/internal/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	userIDKey       = "user_id"
)

// RequestIDMiddleware tags every request with an id, reusing the caller's X-Request-ID when present
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware writes one line per request
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := requestLogger(c)
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
		}
		if status >= http.StatusInternalServerError {
			log.Warn("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

// AuthMiddleware resolves the bearer token to a user id. tokens maps token to user id.
func AuthMiddleware(tokens map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			Fail(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		userID, ok := tokens[strings.TrimSpace(token)]
		if !ok || userID == "" {
			Fail(c, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// ProvisionMiddleware gives each authenticated user the built-in habits on their first request.
// Users that were provisioned once are not checked again for the life of the process.
func ProvisionMiddleware(svc *habits.Service) gin.HandlerFunc {
	var provisioned sync.Map
	return func(c *gin.Context) {
		userID := currentUser(c)
		if _, done := provisioned.Load(userID); done {
			c.Next()
			return
		}

		created, err := svc.EnsureDefaultHabits(c.Request.Context(), userID)
		if err != nil {
			HandleError(c, err)
			return
		}
		if len(created) > 0 {
			requestLogger(c).Info("provisioned built-in habits", "user_id", userID, "count", len(created))
		}
		provisioned.Store(userID, struct{}{})
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func requestLogger(c *gin.Context) *log.Logger {
	return logger.With("component", "api", "request_id", c.GetString(requestIDKey))
}
