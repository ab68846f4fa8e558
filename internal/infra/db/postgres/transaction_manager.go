package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promo-redemption/internal/domain/ports/repository"
	"promo-redemption/internal/infra/metrics"
)

// Ensure compile-time conformance
var _ repository.TransactionManager = (*TxManager)(nil)

// TxManager implements repository.TransactionManager for Postgres (pgx).
// Every transaction gets a LOCAL lock_timeout so a caller blocked on a row
// lock fails with SQLSTATE 55P03 instead of waiting forever.
type TxManager struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

func NewTxManager(pool *pgxpool.Pool, lockTimeout time.Duration) *TxManager {
	return &TxManager{pool: pool, lockTimeout: lockTimeout}
}

// WithTx opens a DB transaction and passes the tx handle to fn.
// If fn returns an error, the transaction is rolled back; otherwise it is committed
// and the AfterCommit callbacks registered by fn are run.
func (m *TxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx, err := m.pool.BeginTx(ctx, txOpt)
	if err != nil {
		metrics.IncDBTxError("begin")
		return fmt.Errorf("begin tx: %w", mapError(err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if m.lockTimeout > 0 {
		ms := fmt.Sprintf("%dms", m.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)", ms); err != nil {
			return fmt.Errorf("set lock_timeout: %w", mapError(err))
		}
	}

	hooked, runHooks := repository.WithCommitHooks(ctx)
	if err := fn(hooked, tx); err != nil {
		return err // rollback in defer
	}
	if err := tx.Commit(ctx); err != nil {
		metrics.IncDBTxError("commit")
		return fmt.Errorf("commit tx: %w", mapError(err))
	}
	runHooks(ctx)
	return nil
}
