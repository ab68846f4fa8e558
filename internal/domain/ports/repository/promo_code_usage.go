package repository

import (
	"context"

	"promo-redemption/internal/domain/model"
)

// PromoCodeUsageRepository is the append-only redemption ledger.
type PromoCodeUsageRepository interface {
	Record(ctx context.Context, tx Tx, u *model.PromoCodeUsage) error
	ListByCode(ctx context.Context, tx Tx, promoCodeID string, limit int) ([]*model.PromoCodeUsage, error)
	CountSuccessByCode(ctx context.Context, tx Tx, promoCodeID string) (int, error)
}
