// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"promo-redemption/internal/domain"
	"promo-redemption/internal/domain/model"
	"promo-redemption/internal/domain/ports/repository"
	ucport "promo-redemption/internal/domain/ports/usecase"
)

var _ ucport.SubscriptionExtender = (*subscriptionUC)(nil)

type subscriptionUC struct {
	subs repository.SubscriptionRepository
	log  *zerolog.Logger
	now  func() time.Time
}

// NewSubscriptionUseCase returns the extender used by promo code redemption.
func NewSubscriptionUseCase(subs repository.SubscriptionRepository, logger *zerolog.Logger) ucport.SubscriptionExtender {
	return &subscriptionUC{subs: subs, log: logger, now: time.Now}
}

// Extend serializes on the user, then extends the existing subscription or
// creates one starting now. It must run on the caller's transaction.
func (uc *subscriptionUC) Extend(ctx context.Context, tx repository.Tx, userID string, days int) (*model.SubscriptionState, error) {
	if userID == "" || days <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if err := uc.subs.LockUser(ctx, tx, userID); err != nil {
		return nil, err
	}

	now := uc.now()
	sub, err := uc.subs.FindByUser(ctx, tx, userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		sub, err = model.NewSubscription(userID, days, now)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := sub.Extend(days, now); err != nil {
			return nil, err
		}
	}

	if err := uc.subs.Save(ctx, tx, sub); err != nil {
		return nil, err
	}
	uc.log.Debug().Str("user_id", userID).Int("days", days).Time("expires_at", sub.ExpiresAt).Msg("subscription extended")
	state := sub.State()
	return &state, nil
}
