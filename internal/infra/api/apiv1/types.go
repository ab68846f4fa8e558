package apiv1

import (
	"time"

	"promo-redemption/internal/domain/model"
)

// ApplyRequest is the body of POST /api/v1/promo-codes/apply.
type ApplyRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type ApplyResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
	DaysAdded int       `json:"days_added"`
}

// CreatePromoCodeRequest is the body of POST /api/v1/promo-codes.
type CreatePromoCodeRequest struct {
	Action      string     `json:"action" validate:"required,oneof=extend_30 extend_60 extend_90 activate_trial"`
	ValidFrom   *time.Time `json:"valid_from,omitempty"`
	ValidUntil  time.Time  `json:"valid_until" validate:"required"`
	MaxUses     int        `json:"max_uses" validate:"required,min=1"`
	Code        string     `json:"code,omitempty" validate:"omitempty,max=64"`
	Description string     `json:"description,omitempty" validate:"max=500"`
}

// UpdatePromoCodeRequest is the body of PATCH /api/v1/promo-codes/{code}.
type UpdatePromoCodeRequest struct {
	Disabled *bool `json:"disabled" validate:"required"`
}

type PromoCode struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Action        string    `json:"action"`
	DaysToAdd     int       `json:"days_to_add"`
	Description   string    `json:"description,omitempty"`
	ValidFrom     time.Time `json:"valid_from"`
	ValidUntil    time.Time `json:"valid_until"`
	MaxUses       int       `json:"max_uses"`
	CurrentUses   int       `json:"current_uses"`
	RemainingUses int       `json:"remaining_uses"`
	Disabled      bool      `json:"disabled"`
	CreatedBy     *string   `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type Usage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UsedAt    time.Time `json:"used_at"`
	Success   bool      `json:"success"`
	Reason    string    `json:"reason,omitempty"`
	DaysAdded int       `json:"days_added"`
}

type UsageList struct {
	Items []Usage `json:"items"`
}

// Error is the body of every non-2xx response.
type Error struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func toPromoCode(p *model.PromoCode) PromoCode {
	return PromoCode{
		ID:            p.ID,
		Code:          p.Code,
		Action:        string(p.Action),
		DaysToAdd:     p.DaysToAdd(),
		Description:   p.Description,
		ValidFrom:     p.ValidFrom,
		ValidUntil:    p.ValidUntil,
		MaxUses:       p.MaxUses,
		CurrentUses:   p.CurrentUses,
		RemainingUses: p.RemainingUses(),
		Disabled:      p.Disabled,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
	}
}

func toUsages(rows []*model.PromoCodeUsage) UsageList {
	out := UsageList{Items: make([]Usage, 0, len(rows))}
	for _, u := range rows {
		out.Items = append(out.Items, Usage{
			ID:        u.ID,
			UserID:    u.UserID,
			UsedAt:    u.UsedAt,
			Success:   u.Success,
			Reason:    u.Reason,
			DaysAdded: u.DaysAdded,
		})
	}
	return out
}
