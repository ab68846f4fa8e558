package repository

import (
	"context"

	"promo-redemption/internal/domain/model"
)

// SubscriptionRepository is the port for user subscriptions.
type SubscriptionRepository interface {
	// LockUser serializes subscription changes for one user until tx ends.
	LockUser(ctx context.Context, tx Tx, userID string) error
	FindByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
}
