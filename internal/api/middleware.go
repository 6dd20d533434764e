package api

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"landmarket/server/internal/apperr"
	"landmarket/server/internal/auth"
	"landmarket/server/internal/authz"
	"landmarket/server/internal/metrics"
	"landmarket/server/internal/models"
)

const (
	actorKey = "actor"
	userKey  = "user"
)

// Authenticator resolves a bearer token to a live account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// resolveActor attaches the caller to the context. A missing header is an
// anonymous caller; a bad one is rejected outright.
func resolveActor(authenticator Authenticator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(actorKey, authz.Actor{})
			c.Next()
			return
		}

		token, ok := auth.BearerToken(header)
		if !ok {
			respondError(c, logger, apperr.Unauthorized("authorization header must be a bearer token"))
			return
		}
		u, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.Set(actorKey, authz.ActorFor(u))
		c.Set(userKey, u)
		c.Next()
	}
}

func actorFrom(c *gin.Context) authz.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(authz.Actor); ok {
			return actor
		}
	}
	return authz.Actor{}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		if actor := actorFrom(c); !actor.IsAnonymous() {
			entry = entry.WithField("actor_id", actor.ID)
		}
		if c.Writer.Status() >= 500 {
			entry.Error("Request completed")
			return
		}
		entry.Info("Request completed")
	}
}

// observeRequests labels by route template so path ids do not explode the
// series count.
func observeRequests(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), start)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
