package model

import (
	"time"

	"promo-redemption/internal/domain"
)

// Subscription is a user's single subscription record.
type Subscription struct {
	UserID    string
	IsActive  bool
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubscriptionState is what callers see after an extension.
type SubscriptionState struct {
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
}

// NewSubscription starts a subscription at now lasting days.
func NewSubscription(userID string, days int, now time.Time) (*Subscription, error) {
	if userID == "" || days <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Subscription{
		UserID:    userID,
		IsActive:  true,
		ExpiresAt: now.AddDate(0, 0, days),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Extend renews the subscription from its expiry, or from now if it already lapsed.
func (s *Subscription) Extend(days int, now time.Time) error {
	if days <= 0 {
		return domain.ErrInvalidArgument
	}
	start := s.ExpiresAt
	if !s.IsActive || !start.After(now) {
		start = now
	}
	s.ExpiresAt = start.AddDate(0, 0, days)
	s.IsActive = true
	s.UpdatedAt = now
	return nil
}

func (s *Subscription) State() SubscriptionState {
	return SubscriptionState{ExpiresAt: s.ExpiresAt, IsActive: s.IsActive}
}
