package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promo-redemption/internal/domain"
	"promo-redemption/internal/domain/model"
	"promo-redemption/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.PromoCodeRepository = (*promoCodeRepo)(nil)

type promoCodeRepo struct {
	pool *pgxpool.Pool
}

func NewPromoCodeRepo(pool *pgxpool.Pool) repository.PromoCodeRepository {
	return &promoCodeRepo{pool: pool}
}

const promoCodeColumns = `id, code, action, description, valid_from, valid_until, max_uses, current_uses, disabled, created_by, created_at`

// Create stores p. A creator id not yet known to users is registered first so
// the created_by reference always resolves.
func (r *promoCodeRepo) Create(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedBy != nil {
		const upsertUser = `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING;`
		if _, err := execSQL(ctx, r.pool, tx, upsertUser, *p.CreatedBy); err != nil {
			return mapError(err)
		}
	}
	const q = `
INSERT INTO promo_codes (` + promoCodeColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.Code, string(p.Action), p.Description, p.ValidFrom, p.ValidUntil, p.MaxUses, p.CurrentUses, p.Disabled, p.CreatedBy, p.CreatedAt,
	)
	if err != nil {
		err = mapError(err)
		if errors.Is(err, domain.ErrAlreadyExists) {
			return domain.ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *promoCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	const q = `SELECT ` + promoCodeColumns + ` FROM promo_codes WHERE code = $1;`
	return r.queryOne(ctx, tx, q, code)
}

// FindByCodeForUpdate takes the exclusive row lock used to serialize redemptions
// of the same code. Waiting is bounded by the transaction's lock_timeout.
func (r *promoCodeRepo) FindByCodeForUpdate(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	if _, ok := tx.(pgx.Tx); !ok {
		return nil, domain.ErrInvalidExecContext
	}
	const q = `SELECT ` + promoCodeColumns + ` FROM promo_codes WHERE code = $1 FOR UPDATE;`
	return r.queryOne(ctx, tx, q, code)
}

func (r *promoCodeRepo) IncrementUsage(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	const q = `
UPDATE promo_codes
   SET current_uses = current_uses + 1
 WHERE id = $1 AND current_uses < max_uses
RETURNING current_uses;`
	row, err := pickRow(ctx, r.pool, tx, q, p.ID)
	if err != nil {
		return err
	}
	var uses int
	if err := row.Scan(&uses); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// only reachable without the row lock
			return fmt.Errorf("increment usage of %s: %w", p.ID, domain.ErrCodeCannotUse)
		}
		return mapError(err)
	}
	p.CurrentUses = uses
	return nil
}

func (r *promoCodeRepo) SetDisabled(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	const q = `UPDATE promo_codes SET disabled = $2 WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Disabled)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *promoCodeRepo) CountUsable(ctx context.Context, tx repository.Tx) (int, error) {
	const q = `
SELECT COUNT(*)
  FROM promo_codes
 WHERE disabled = FALSE
   AND NOW() BETWEEN valid_from AND valid_until
   AND current_uses < max_uses;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *promoCodeRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...any) (*model.PromoCode, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	var (
		p      model.PromoCode
		action string
	)
	if err := row.Scan(
		&p.ID, &p.Code, &action, &p.Description, &p.ValidFrom, &p.ValidUntil,
		&p.MaxUses, &p.CurrentUses, &p.Disabled, &p.CreatedBy, &p.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	p.Action = model.PromoAction(action)
	return &p, nil
}
