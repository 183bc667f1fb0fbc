package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mindmap-server/internal/auth"
	"github.com/mindmap-server/internal/config"
	"github.com/mindmap-server/internal/service"
	"github.com/rs/zerolog"
)

const (
	actorKey = "actor"
	tokenKey = "session_token"
)

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		if actor := actorFrom(c); actor != nil {
			event = event.Str("user_id", actor.ID)
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// sessionMiddleware resolves the session cookie into an actor. It never
// rejects a request; the guards below do that.
func sessionMiddleware(authSvc service.AuthService, signer *auth.CookieSigner, cfg config.SessionConfig, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(cfg.CookieName)
		if err != nil || value == "" {
			c.Next()
			return
		}

		token, err := signer.Verify(value)
		if err != nil {
			log.Debug().Err(err).Msg("Rejected session cookie")
			c.Next()
			return
		}

		actor, err := authSvc.ResolveActor(c.Request.Context(), token)
		if err != nil {
			writeError(c, log, err)
			c.Abort()
			return
		}
		if actor != nil {
			c.Set(actorKey, actor)
			c.Set(tokenKey, token)
		}
		c.Next()
	}
}

// requireSession rejects requests without a resolved actor
func requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.Authenticated(actorFrom(c)).Allowed() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

// requireAdmin rejects non-admin actors
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch auth.CanManageUsers(actorFrom(c)) {
		case auth.Allow:
			c.Next()
		case auth.DenyUnauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		}
	}
}

// actorFrom returns the request's actor, or nil
func actorFrom(c *gin.Context) *auth.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(*auth.Actor); ok {
			return actor
		}
	}
	return nil
}

// sessionToken returns the raw session token of the request, or ""
func sessionToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
