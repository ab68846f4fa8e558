package model

import (
	"strings"
	"time"

	"promo-redemption/internal/domain"
)

// PromoAction is the benefit a promo code grants.
type PromoAction string

const (
	PromoActionExtend30      PromoAction = "extend_30"
	PromoActionExtend60      PromoAction = "extend_60"
	PromoActionExtend90      PromoAction = "extend_90"
	PromoActionActivateTrial PromoAction = "activate_trial"
)

// actionDays is fixed; codes never carry their own day-count.
var actionDays = map[PromoAction]int{
	PromoActionExtend30:      30,
	PromoActionExtend60:      60,
	PromoActionExtend90:      90,
	PromoActionActivateTrial: 7,
}

// DaysFor returns the day-count for an action and whether the action is known.
func DaysFor(a PromoAction) (int, bool) {
	d, ok := actionDays[a]
	return d, ok
}

// PromoCode is a time-boxed, usage-limited code redeemable for subscription days.
type PromoCode struct {
	ID          string
	Code        string
	Action      PromoAction
	Description string
	ValidFrom   time.Time
	ValidUntil  time.Time
	MaxUses     int
	CurrentUses int
	Disabled    bool
	CreatedBy   *string // nil when the creator is unknown or was deleted
	CreatedAt   time.Time
}

// NewPromoCode validates creation parameters against now and builds an unsaved code.
// code must already be normalized.
func NewPromoCode(id, code string, action PromoAction, validFrom, validUntil time.Time, maxUses int, createdBy *string, description string, now time.Time) (*PromoCode, error) {
	if id == "" || code == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, ok := DaysFor(action); !ok {
		return nil, domain.ErrUnknownAction
	}
	if !IsValidCode(code) {
		return nil, domain.ErrInvalidCode
	}
	if !validUntil.After(validFrom) {
		return nil, domain.ErrInvalidWindow
	}
	if validFrom.Before(now) {
		return nil, domain.ErrValidFromInPast
	}
	if maxUses < 1 {
		return nil, domain.ErrInvalidMaxUses
	}
	return &PromoCode{
		ID:          id,
		Code:        code,
		Action:      action,
		Description: description,
		ValidFrom:   validFrom,
		ValidUntil:  validUntil,
		MaxUses:     maxUses,
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}, nil
}

// DaysToAdd is the subscription extension granted by one redemption.
func (p *PromoCode) DaysToAdd() int {
	d, _ := DaysFor(p.Action)
	return d
}

// CanUse reports whether the code is redeemable at now. The usage window is inclusive.
// Callers that go on to redeem must evaluate it while holding the row lock.
func (p *PromoCode) CanUse(now time.Time) bool {
	if p.Disabled {
		return false
	}
	if now.Before(p.ValidFrom) || now.After(p.ValidUntil) {
		return false
	}
	return p.CurrentUses < p.MaxUses
}

// MarkUsed records one successful redemption in memory; persistence is the
// repository's IncrementUsage under the same lock.
func (p *PromoCode) MarkUsed() {
	p.CurrentUses++
}

// RemainingUses is never negative.
func (p *PromoCode) RemainingUses() int {
	if p.CurrentUses >= p.MaxUses {
		return 0
	}
	return p.MaxUses - p.CurrentUses
}

// NormalizeCode trims and upper-cases user input.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IsValidCode accepts non-empty upper-case ASCII letters and digits.
func IsValidCode(code string) bool {
	if code == "" {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
