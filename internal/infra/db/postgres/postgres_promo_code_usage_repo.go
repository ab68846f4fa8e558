package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"promo-redemption/internal/domain"
	"promo-redemption/internal/domain/model"
	"promo-redemption/internal/domain/ports/repository"
)

var _ repository.PromoCodeUsageRepository = (*promoCodeUsageRepo)(nil)

type promoCodeUsageRepo struct {
	pool *pgxpool.Pool
}

func NewPromoCodeUsageRepo(pool *pgxpool.Pool) repository.PromoCodeUsageRepository {
	return &promoCodeUsageRepo{pool: pool}
}

// Record appends one ledger row. The table has no unique key besides the
// surrogate id, so concurrent inserts never conflict.
func (r *promoCodeUsageRepo) Record(ctx context.Context, tx repository.Tx, u *model.PromoCodeUsage) error {
	const q = `
INSERT INTO promo_code_usages (id, promo_code_id, user_id, used_at, success, reason, days_added)
VALUES ($1, $2, $3, $4, $5, $6, $7);`
	_, err := execSQL(ctx, r.pool, tx, q, u.ID, u.PromoCodeID, u.UserID, u.UsedAt, u.Success, u.Reason, u.DaysAdded)
	return mapError(err)
}

func (r *promoCodeUsageRepo) ListByCode(ctx context.Context, tx repository.Tx, promoCodeID string, limit int) ([]*model.PromoCodeUsage, error) {
	const q = `
SELECT id, promo_code_id, user_id, used_at, success, reason, days_added
  FROM promo_code_usages
 WHERE promo_code_id = $1
 ORDER BY used_at DESC, id DESC
 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, promoCodeID, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []*model.PromoCodeUsage
	for rows.Next() {
		u := &model.PromoCodeUsage{}
		if err := rows.Scan(&u.ID, &u.PromoCodeID, &u.UserID, &u.UsedAt, &u.Success, &u.Reason, &u.DaysAdded); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *promoCodeUsageRepo) CountSuccessByCode(ctx context.Context, tx repository.Tx, promoCodeID string) (int, error) {
	const q = `SELECT COUNT(*) FROM promo_code_usages WHERE promo_code_id = $1 AND success = TRUE;`
	row, err := pickRow(ctx, r.pool, tx, q, promoCodeID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}
