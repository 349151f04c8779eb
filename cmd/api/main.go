package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"billpay/config"
	httpHandler "billpay/internal/adapter/http/handler"
	"billpay/internal/adapter/provider"
	"billpay/internal/adapter/provider/gsub"
	"billpay/internal/adapter/provider/n3t"
	"billpay/internal/adapter/provider/vtpass"
	pgStorage "billpay/internal/adapter/storage/postgres"
	redisStorage "billpay/internal/adapter/storage/redis"
	"billpay/internal/core/ports"
	"billpay/internal/service"
	"billpay/pkg/logger"

	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting bill payment engine")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	idempotencyRepo := pgStorage.NewIdempotencyRepo(pool)
	catalogRepo := pgStorage.NewCatalogRepo(pool)
	profileRepo := pgStorage.NewProfileRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize provider adapters
	registry := provider.NewRegistry(
		vtpass.New(cfg.VTPass, log),
		gsub.New(cfg.Gsub, log),
		n3t.New(cfg.N3T, log),
	)

	// Initialize business services
	pricing := service.NewPricingRules(
		decimal.NewFromFloat(cfg.Billing.AirtimeMin),
		decimal.NewFromFloat(cfg.Billing.ElectricityMin),
		decimal.NewFromFloat(cfg.Billing.ElectricityMarkup),
		cfg.Billing.CashbackRateDec(),
	)
	fundingSelector := service.NewFundingSelector(cfg.Billing.CashbackCapDec())
	coordinator := service.NewCoordinator(
		walletRepo,
		ledgerRepo,
		idempotencyRepo,
		idempotencyCache,
		catalogRepo,
		registry,
		transactor,
		pricing,
		fundingSelector,
		log,
	)
	fundingSvc := service.NewPalmPayFundingService(
		walletRepo,
		ledgerRepo,
		idempotencyRepo,
		idempotencyCache,
		transactor,
		log,
	)
	reportingSvc := service.NewReportingService(ledgerRepo, walletRepo)
	pinSvc := service.NewBcryptPinService(profileRepo)
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Coordinator:    coordinator,
		FundingSvc:     fundingSvc,
		ReportingSvc:   reportingSvc,
		PinSvc:         pinSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		PalmPayKey:     cfg.PalmPay.PublicKey,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
