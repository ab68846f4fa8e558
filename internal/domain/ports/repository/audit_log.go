package repository

import (
	"context"

	"promo-redemption/internal/domain/model"
)

type AuditLogRepository interface {
	Save(ctx context.Context, tx Tx, e *model.AuditEntry) error
}
