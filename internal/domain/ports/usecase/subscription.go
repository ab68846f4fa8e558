package usecase

import (
	"context"

	"promo-redemption/internal/domain/model"
	"promo-redemption/internal/domain/ports/repository"
)

// SubscriptionExtender extends or creates a user's subscription by days and
// returns the resulting state. It runs on the caller's tx so a later failure
// in the same unit of work undoes the extension.
type SubscriptionExtender interface {
	Extend(ctx context.Context, tx repository.Tx, userID string, days int) (*model.SubscriptionState, error)
}
