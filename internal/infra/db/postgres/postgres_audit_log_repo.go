package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"promo-redemption/internal/domain/model"
	"promo-redemption/internal/domain/ports/repository"
)

var _ repository.AuditLogRepository = (*auditLogRepo)(nil)

type auditLogRepo struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepo(pool *pgxpool.Pool) repository.AuditLogRepository {
	return &auditLogRepo{pool: pool}
}

func (r *auditLogRepo) Save(ctx context.Context, tx repository.Tx, e *model.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	details, err := json.Marshal(e.Details)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO audit_log (id, actor_id, action_type, description, target_id, details, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);`
	_, err = execSQL(ctx, r.pool, tx, q, e.ID, e.ActorID, e.ActionType, e.Description, e.TargetID, details, e.CreatedAt)
	return mapError(err)
}
