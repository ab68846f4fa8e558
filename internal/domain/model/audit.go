package model

import "time"

// Audit action types.
const (
	AuditActionPromoCode        = "promo_code"
	AuditActionPromoCodeApplied = "promo_code_applied"
	AuditActionPromoCodeToggled = "promo_code_toggled"
)

// AuditEntry is a fire-and-forget record of an administrative or user action.
type AuditEntry struct {
	ID          string
	ActorID     *string
	ActionType  string
	Description string
	TargetID    string
	Details     map[string]any
	CreatedAt   time.Time
}
