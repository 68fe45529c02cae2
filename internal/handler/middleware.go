package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recipehub/backend/internal/model"
	"github.com/recipehub/backend/internal/service"
)

const (
	msgNoToken      = "Access denied. Please log in into your account."
	msgInvalidToken = "Invalid or expired token. Please log in again."
)

// Authenticate verifies the bearer token and attaches the caller's identity.
// The token is the second space-separated field of the Authorization header.
func Authenticate(authService *service.AuthService) Interceptor {
	return func(ctx context.Context, r *http.Request) (context.Context, *Rejection) {
		if r.Method == http.MethodOptions {
			return ctx, nil
		}

		fields := strings.Fields(r.Header.Get("Authorization"))
		if len(fields) < 2 {
			return ctx, &Rejection{Status: http.StatusUnauthorized, Message: msgNoToken}
		}

		identity, err := authService.ParseAccessToken(fields[1])
		if err != nil {
			slog.DebugContext(ctx, "rejected access token", "error", err)
			return ctx, &Rejection{Status: http.StatusUnauthorized, Message: msgInvalidToken}
		}

		return service.WithIdentity(ctx, identity), nil
	}
}

func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return Pipeline(Authenticate(authService))
}

func GetIdentity(c *gin.Context) *model.Identity {
	identity, ok := service.IdentityFromContext(c.Request.Context())
	if !ok {
		return nil
	}
	return identity
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		logger.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}
