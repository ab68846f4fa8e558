package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"promo-redemption/internal/config"
	"promo-redemption/internal/domain"
	"promo-redemption/internal/domain/model"
	"promo-redemption/internal/infra/api/apiv1"
	pg "promo-redemption/internal/infra/db/postgres"
	"promo-redemption/internal/infra/logging"
	"promo-redemption/internal/infra/worker"
	"promo-redemption/internal/usecase"
)

func main() {
	// ---- Config ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	adminID := flag.String("admin", "admin", "user id recorded as creator of the seeded codes")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect Postgres
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `INSERT INTO users (id) VALUES ($1) ON CONFLICT DO NOTHING`, *adminID); err != nil {
		log.Fatalf("seed admin user: %v", err)
	}

	auditPool := worker.NewPool(1, logger)
	auditPool.Start(ctx)
	defer auditPool.Stop()

	txManager := pg.NewTxManager(pool, cfg.Database.LockTimeout)
	promoUC := usecase.NewPromoCodeUseCase(
		pg.NewPromoCodeRepo(pool),
		pg.NewPromoCodeUsageRepo(pool),
		usecase.NewSubscriptionUseCase(pg.NewSubscriptionRepo(pool), logger),
		usecase.NewAuditUseCase(pg.NewAuditLogRepo(pool), auditPool, logger),
		txManager,
		usecase.PromoCodeSettings{CodeLength: cfg.Promo.CodeLength},
		true, logger,
	)

	// Sample codes for local testing
	now := time.Now()
	seed := []struct {
		Code    string
		Action  model.PromoAction
		MaxUses int
		Days    int
		Desc    string
	}{
		{"WELCOME7", model.PromoActionActivateTrial, 1000, 90, "trial for new users"},
		{"SPRING30", model.PromoActionExtend30, 100, 30, "spring campaign"},
		{"VIP90", model.PromoActionExtend90, 5, 365, "partner giveaway"},
		{"", model.PromoActionExtend60, 1, 7, "single-use generated code"},
	}

	for _, s := range seed {
		p, err := promoUC.Create(ctx, usecase.CreatePromoCodeInput{
			Action:      s.Action,
			ValidUntil:  now.AddDate(0, 0, s.Days),
			MaxUses:     s.MaxUses,
			Code:        s.Code,
			CreatedBy:   adminID,
			Description: s.Desc,
		})
		if errors.Is(err, domain.ErrDuplicateCode) {
			fmt.Printf("skipped: %s already exists\n", s.Code)
			continue
		}
		if err != nil {
			log.Fatalf("create promo code %q: %v", s.Code, err)
		}
		fmt.Printf("seeded: %s (action=%s, max_uses=%d, valid_until=%s)\n", p.Code, p.Action, p.MaxUses, p.ValidUntil.Format(time.RFC3339))
	}

	// Tokens for trying the API by hand
	auth := apiv1.NewAuthManager(cfg.Auth.JWTSecret)
	adminTok, err := auth.Mint(*adminID, apiv1.RoleAdmin, 24*time.Hour)
	if err != nil {
		log.Fatalf("mint admin token: %v", err)
	}
	userTok, err := auth.Mint("demo-user", "", 24*time.Hour)
	if err != nil {
		log.Fatalf("mint user token: %v", err)
	}
	fmt.Printf("admin token: %s\nuser token (demo-user): %s\n", adminTok, userTok)
	fmt.Println("✅ Seeding complete.")
}
