package usecase

import (
	"context"

	"promo-redemption/internal/domain/model"
)

// AuditRecorder records an action without blocking or failing the caller.
type AuditRecorder interface {
	Record(ctx context.Context, entry model.AuditEntry)
}
