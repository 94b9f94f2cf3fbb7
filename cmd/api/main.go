package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/otti-labs/otti-workspace/internal/app"
	"github.com/otti-labs/otti-workspace/internal/cache"
	"github.com/otti-labs/otti-workspace/internal/clock"
	"github.com/otti-labs/otti-workspace/internal/config"
	"github.com/otti-labs/otti-workspace/internal/storage/postgres"
	transporthttp "github.com/otti-labs/otti-workspace/internal/transport/http"
	"github.com/otti-labs/otti-workspace/migrations"
	"github.com/otti-labs/otti-workspace/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatal("db ping", zap.Error(err))
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatal("apply migrations", zap.Error(err))
	}

	// the KPI cache is optional; without Redis every dashboard read hits
	// Postgres directly
	var kpiCache app.KPICache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal("connect to redis", zap.Error(err))
		}
		defer func() { _ = redisCache.Close() }()
		kpiCache = redisCache
		log.Info("kpi cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	clk := clock.NewSystem()

	conversationRepo := postgres.NewConversationRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	tenantRepo := postgres.NewTenantRepository(pool)
	campaignRepo := postgres.NewCampaignRepository(pool)
	userRepo := postgres.NewPanelUserRepository(pool)

	svcs := transporthttp.Services{
		Auth:      app.NewAuthService(userRepo, []byte(cfg.JWTSecret), cfg.JWTExpiration, clk),
		Funnel:    app.NewFunnelService(bookingRepo, productRepo, clk),
		Inbox:     app.NewInboxService(conversationRepo, tenantRepo, clk),
		Campaigns: app.NewCampaignService(conversationRepo, campaignRepo, clk),
		Catalog:   app.NewCatalogService(productRepo, clk),
		Tenants:   app.NewTenantService(tenantRepo),
		Dashboard: app.NewDashboardService(tenantRepo, kpiCache),
	}

	handler := transporthttp.NewRouter(svcs, transporthttp.RouterConfig{
		JWTSecret:       []byte(cfg.JWTSecret),
		AllowedOrigins:  cfg.AllowedOrigins,
		LoginRateLimit:  cfg.RateLimitRequests,
		LoginRateWindow: cfg.RateLimitWindow,
	}, log)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
	}

	log.Info("api listening", zap.String("port", cfg.ServerPort))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
		}
	case <-stopCtx.Done():
		log.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server shutdown error", zap.Error(err))
	}
	log.Info("server stopped")
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	if cfg.IsDevelopment() {
		return logger.NewDevelopment()
	}
	return logger.New(cfg.LogLevel)
}
