package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/minibank/minibank/internal/config"
	"github.com/minibank/minibank/internal/currency"
	"github.com/minibank/minibank/internal/domain"
	"github.com/minibank/minibank/internal/handler"
	"github.com/minibank/minibank/internal/logging"
	"github.com/minibank/minibank/internal/middleware"
	"github.com/minibank/minibank/internal/rates"
	"github.com/minibank/minibank/internal/repository"
	"github.com/minibank/minibank/internal/service"
	"github.com/minibank/minibank/internal/service/transfer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("minibank-api", cfg.LogLevel, cfg.AppEnv)

	ctx := context.Background()

	db, err := connectDB(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rateSource := buildRateSource(ctx, cfg)
	converter := currency.NewConverter(rateSource)

	accountRepo := repository.NewAccountRepository(db)
	userRepo := repository.NewUserRepository(db)
	transferRepo := repository.NewTransferRepository(db)

	accountSvc := service.NewAccountService(accountRepo, userRepo)
	userSvc := service.NewUserService(userRepo, accountRepo)
	transferSvc := transfer.NewService(accountRepo, transferRepo, converter, db, cfg.CommissionPct)

	accountHandler := handler.NewAccountHandler(accountSvc)
	userHandler := handler.NewUserHandler(userSvc)
	transferHandler := handler.NewTransferHandler(transferSvc)
	healthHandler := handler.NewHealthHandler(db)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.Handle("GET /metrics", promhttp.Handler())

	api := http.NewServeMux()
	api.HandleFunc("POST /api/v1/users", userHandler.Create)
	api.HandleFunc("GET /api/v1/users", userHandler.List)
	api.HandleFunc("GET /api/v1/users/{id}", userHandler.Get)
	api.HandleFunc("PUT /api/v1/users/{id}", userHandler.Update)
	api.HandleFunc("DELETE /api/v1/users/{id}", userHandler.Delete)
	api.HandleFunc("GET /api/v1/users/{id}/accounts", accountHandler.ListByUser)

	api.HandleFunc("POST /api/v1/accounts", accountHandler.Create)
	api.HandleFunc("GET /api/v1/accounts", accountHandler.List)
	api.HandleFunc("GET /api/v1/accounts/{id}", accountHandler.Get)
	api.HandleFunc("PUT /api/v1/accounts/{id}", accountHandler.Update)
	api.HandleFunc("DELETE /api/v1/accounts/{id}", accountHandler.Delete)
	api.HandleFunc("POST /api/v1/accounts/{id}/close", accountHandler.Close)
	api.HandleFunc("PUT /api/v1/accounts/{id}/balance", accountHandler.SetBalance)
	api.HandleFunc("GET /api/v1/accounts/{id}/transfers", transferHandler.ListByAccount)

	api.HandleFunc("POST /api/v1/transfers", transferHandler.Create)
	api.HandleFunc("POST /api/v1/transfers/commission", transferHandler.CommissionQuote)
	api.HandleFunc("GET /api/v1/transfers", transferHandler.List)
	api.HandleFunc("GET /api/v1/transfers/{id}", transferHandler.Get)

	mux.Handle("/api/v1/", middleware.Auth(cfg.JWTSecret)(api))

	root := middleware.Tracing(middleware.Logging(middleware.Metrics(middleware.Recovery(mux))))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

type rateSource interface {
	GetRate(ctx context.Context, currency domain.Currency) (decimal.Decimal, error)
}

// buildRateSource wraps the upstream quotes client with a Redis cache when
// REDIS_URL is configured; without it quotes go straight to the origin.
func buildRateSource(ctx context.Context, cfg *config.Config) rateSource {
	client := rates.NewClient(cfg.RatesURL, time.Duration(cfg.RatesTimeoutS)*time.Second)
	if cfg.RedisURL == "" {
		return client
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Warn("invalid REDIS_URL, rate caching disabled", "error", err)
		return client
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, rate caching disabled", "error", err)
		return client
	}

	return rates.NewCachedSource(client, rdb, time.Duration(cfg.RatesCacheTTLS)*time.Second)
}

func connectDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	pool := repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}

	var db *sql.DB
	var err error
	for i := range 30 {
		db, err = repository.NewPostgresDB(ctx, cfg.DatabaseURL, pool)
		if err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}
