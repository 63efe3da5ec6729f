package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/credgate/internal/config"
	"github.com/msomdec/credgate/internal/domain"
	"github.com/msomdec/credgate/internal/handler"
	"github.com/msomdec/credgate/internal/logger"
	"github.com/msomdec/credgate/internal/metrics"
	"github.com/msomdec/credgate/internal/repository/mongodb"
	"github.com/msomdec/credgate/internal/repository/sqlite"
	"github.com/msomdec/credgate/internal/service"
	"github.com/msomdec/credgate/internal/token"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)

	if cfg.DefaultSecretInUse {
		slog.Warn("JWT_SECRET is not set; signing tokens with the built-in default secret, which anyone can use to forge tokens")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open credential store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		slog.Error("failed to prepare credential store", "error", err)
		os.Exit(1)
	}

	signer := token.NewSigner(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(store.Users(), service.NewBcryptHasher(cfg.BcryptCost), signer)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, collector)
	mux.Handle("GET /metrics", metrics.Handler(reg))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Wrap(mux, log, collector, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore connects to MongoDB when a URI is configured and falls back to
// the local SQLite file otherwise.
func openStore(ctx context.Context, cfg *config.Config) (domain.Store, error) {
	if cfg.MongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		store, err := mongodb.New(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		slog.Info("using MongoDB credential store", "database", cfg.MongoDatabase)
		return store, nil
	}

	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	slog.Info("using SQLite credential store", "path", cfg.DatabasePath)
	return store, nil
}
