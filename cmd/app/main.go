// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"promo-redemption/internal/config"
	"promo-redemption/internal/infra/api"
	"promo-redemption/internal/infra/api/apiv1"
	pg "promo-redemption/internal/infra/db/postgres"
	httpserver "promo-redemption/internal/infra/http"
	"promo-redemption/internal/infra/logging"
	"promo-redemption/internal/infra/metrics"
	red "promo-redemption/internal/infra/redis"
	"promo-redemption/internal/infra/sched"
	"promo-redemption/internal/infra/worker"
	"promo-redemption/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted codes)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool, cfg.Database.LockTimeout)
	codeRepo := pg.NewPromoCodeRepoCacheDecorator(pg.NewPromoCodeRepo(pool), redisClient, cfg.Redis.TTL, logger)
	usageRepo := pg.NewPromoCodeUsageRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	auditRepo := pg.NewAuditLogRepo(pool)

	// ---- Background workers ----
	auditPool := worker.NewPool(cfg.Promo.AuditWorkers, logger)
	auditPool.Start(ctx)

	statsWorker := sched.NewStatsWorker(cfg.Promo.StatsInterval, codeRepo, sched.PgxPoolStats(pool), logger)
	go func() { _ = statsWorker.Run(ctx) }()

	// ---- Use cases ----
	auditUC := usecase.NewAuditUseCase(auditRepo, auditPool, logger)
	subUC := usecase.NewSubscriptionUseCase(subRepo, logger)
	promoUC := usecase.NewPromoCodeUseCase(codeRepo, usageRepo, subUC, auditUC, txManager,
		usecase.PromoCodeSettings{
			CodeLength:     cfg.Promo.CodeLength,
			UsageListLimit: cfg.Promo.UsageListLimit,
		},
		cfg.Runtime.Dev, logger)

	// ---- HTTP ----
	v1 := apiv1.NewServer(promoUC, apiv1.NewAuthManager(cfg.Auth.JWTSecret), logger)
	router := api.NewRouter(v1, map[string]api.Pinger{"postgres": pool, "redis": redisClient}, cfg.HTTP.RequestTimeout, logger)
	server := httpserver.NewServer(cfg.HTTP, router, logger)

	errc := make(chan error, 1)
	go func() { errc <- server.Start() }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case err := <-errc:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	auditPool.Stop()
	logger.Info().Msg("bye")
}
