package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"membership-payments/internal/checkout"
	"membership-payments/internal/config"
	"membership-payments/internal/domain/model"
	"membership-payments/internal/domain/ports/adapter"
	payAdapters "membership-payments/internal/infra/adapters/payment"
	pg "membership-payments/internal/infra/db/postgres"
	"membership-payments/internal/infra/logging"
	"membership-payments/internal/infra/metrics"
	red "membership-payments/internal/infra/redis"
	"membership-payments/internal/infra/web"
	"membership-payments/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Plan catalog ----
	catalog, err := model.NewCatalog(
		model.Plan{
			Tier:     model.TierMonthlyPremium,
			Price:    cfg.Payment.MonthlyPremium.Price,
			Currency: cfg.Payment.Currency,
			Duration: time.Duration(cfg.Payment.MonthlyPremium.DurationDays) * 24 * time.Hour,
		},
		model.Plan{
			Tier:     model.TierYearlyPremium,
			Price:    cfg.Payment.YearlyPremium.Price,
			Currency: cfg.Payment.Currency,
			Duration: time.Duration(cfg.Payment.YearlyPremium.DurationDays) * 24 * time.Hour,
		},
	)
	if err != nil {
		log.Fatalf("plan catalog: %v", err)
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	locker := red.NewVerifyLocker(redisClient)
	marker := red.NewProcessedMarker(redisClient, cfg.Redis.TTL)

	// ---- Repositories ----
	orderRepo := pg.NewOrderRepo(pool)
	recordRepo := pg.NewPaymentRecordRepo(pool)
	membershipRepo := pg.NewMembershipRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Gateway strategy ----
	// Chosen once here: the real gateway when credentials exist, the
	// simulated one outside production when they do not. Downstream code
	// never branches on environment again except the verifier's accept gate.
	real := payAdapters.NewRazorpayGateway(cfg.Payment.KeyID, cfg.Payment.KeySecret)
	var gateway adapter.CheckoutGateway = real
	if real.Configured() {
		loader := checkout.NewLoader(payAdapters.NewGatewayBridge(real), cfg.Payment.BridgeTimeout, logger)
		if !loader.EnsureLoaded(ctx) {
			// Orders will still be attempted; the startup check is advisory.
			logger.Warn().Msg("gateway credential check failed at startup")
		}
	} else {
		if cfg.Payment.Production() {
			log.Fatalf("payment gateway credentials missing in production")
		}
		logger.Warn().Msg("gateway unconfigured, using simulated gateway")
		gateway = payAdapters.NewSimulatedGateway()
	}

	// ---- Use cases ----
	membershipUC := usecase.NewMembershipUseCase(membershipRepo, recordRepo, cfg.Payment.RenewalPolicy, logger)
	verifyUC := usecase.NewVerifyUseCase(
		orderRepo, recordRepo, membershipRepo, membershipUC, catalog,
		txManager, locker, marker,
		cfg.Payment.KeySecret, cfg.Payment.Production(), logger,
	)
	orderUC := usecase.NewOrderUseCase(orderRepo, catalog, gateway, logger)

	simOrderUC := usecase.NewOrderUseCase(orderRepo, catalog, payAdapters.NewSimulatedGateway(), logger)
	testUC := usecase.NewTestUpgradeUseCase(simOrderUC, verifyUC, cfg.Payment.Production(), logger)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TTL)
	srv := web.NewServer(orderUC, verifyUC, membershipUC, testUC, auth, cfg.Payment.Production(), logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	_ = server.Shutdown(sctx)
	cancel()
}
