package model

import (
	"time"
)

// PromoCodeUsage is one ledger row: a single redemption attempt and its outcome.
// Rows are never updated or deleted.
type PromoCodeUsage struct {
	ID          string // ULID, sortable by creation time
	PromoCodeID string
	UserID      string
	UsedAt      time.Time
	Success     bool
	Reason      string // empty on success
	DaysAdded   int    // 0 on failure
}

func NewFailedUsage(id, promoCodeID, userID, reason string, at time.Time) *PromoCodeUsage {
	return &PromoCodeUsage{
		ID:          id,
		PromoCodeID: promoCodeID,
		UserID:      userID,
		UsedAt:      at,
		Success:     false,
		Reason:      reason,
	}
}

func NewSuccessfulUsage(id, promoCodeID, userID string, days int, at time.Time) *PromoCodeUsage {
	return &PromoCodeUsage{
		ID:          id,
		PromoCodeID: promoCodeID,
		UserID:      userID,
		UsedAt:      at,
		Success:     true,
		DaysAdded:   days,
	}
}
