package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recipehub/backend/internal/client"
	"github.com/recipehub/backend/internal/config"
	"github.com/recipehub/backend/internal/db"
	"github.com/recipehub/backend/internal/handler"
	"github.com/recipehub/backend/internal/service"
)

// @title           Recipe API
// @version         1.0
// @description     User accounts and recipe CRUD with paginated listings.
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

// store is the persistence surface the services and health check need.
type store interface {
	service.UserRepository
	service.RecipeRepository
	handler.Pinger
	Close(ctx context.Context) error
}

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		fatal("invalid configuration", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	st, err := openStore(startupCtx, cfg)
	if err != nil {
		cancel()
		fatal("failed to open store", err, "driver", cfg.Store.Driver)
	}

	var images service.ImageStore
	if cfg.Storage.ImagesEnabled() {
		s3Store, err := client.NewS3ImageStore(startupCtx, cfg.Storage)
		if err != nil {
			cancel()
			fatal("failed to configure image store", err)
		}
		images = s3Store
	} else {
		logger.Info("image uploads disabled; set S3_BUCKET to enable")
	}
	cancel()

	hasher, err := service.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		fatal("invalid password hashing config", err)
	}
	tokens, err := service.NewTokenManager(cfg.Auth.JWTSecret)
	if err != nil {
		fatal("invalid token config", err)
	}

	authSvc := service.NewAuthService(st, hasher, tokens, service.AuthOptions{
		GenericLoginErrors: cfg.Auth.GenericLoginErrors,
	})
	recipeSvc := service.NewRecipeService(st, images, logger)

	gin.SetMode(cfg.Server.GinMode)
	router := handler.NewRouter(authSvc, recipeSvc, st, handler.RouterOptions{
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Pagination: service.PaginationPolicy{
			DefaultLimit: cfg.Pagination.DefaultLimit,
			MaxLimit:     cfg.Pagination.MaxLimit,
		},
		Uploads: handler.UploadConfig{
			Dir:      cfg.Server.UploadDir,
			MaxBytes: cfg.Server.UploadMaxBytes,
		},
		Logger: logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server failed", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if err := st.Close(shutdownCtx); err != nil {
		logger.Error("failed to close store", "error", err)
	}
}

func openStore(ctx context.Context, cfg config.Config) (store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := db.OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.StoreDriverMongo:
		m, err := db.OpenMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.StoreDriverMemory:
		slog.Warn("using in-memory store; data is lost on restart")
		return db.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func fatal(msg string, err error, args ...any) {
	slog.Error(msg, append([]any{"error", err}, args...)...)
	os.Exit(1)
}
