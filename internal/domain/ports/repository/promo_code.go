package repository

import (
	"context"

	"promo-redemption/internal/domain/model"
)

// PromoCodeRepository is the storage port for promo codes.
type PromoCodeRepository interface {
	// Create inserts a new code. Returns domain.ErrDuplicateCode on a unique violation.
	Create(ctx context.Context, tx Tx, p *model.PromoCode) error
	// FindByCode is a plain read with no lock.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.PromoCode, error)
	// FindByCodeForUpdate reads the row and holds an exclusive lock on it until
	// tx ends. tx must be a live transaction.
	FindByCodeForUpdate(ctx context.Context, tx Tx, code string) (*model.PromoCode, error)
	// IncrementUsage adds exactly one to current_uses of p and stores the new
	// value back on p. Caller must hold the row lock.
	IncrementUsage(ctx context.Context, tx Tx, p *model.PromoCode) error
	// SetDisabled persists p.Disabled.
	SetDisabled(ctx context.Context, tx Tx, p *model.PromoCode) error
	// CountUsable counts codes redeemable right now.
	CountUsable(ctx context.Context, tx Tx) (int, error)
}
