package sched

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"promo-redemption/internal/domain/ports/repository"
	"promo-redemption/internal/infra/metrics"
)

// PoolStatsFunc reports connection pool counters.
type PoolStatsFunc func() (total, idle, inUse int32)

// PgxPoolStats adapts a pgx pool for the stats worker.
func PgxPoolStats(pool *pgxpool.Pool) PoolStatsFunc {
	return func() (int32, int32, int32) {
		s := pool.Stat()
		return s.TotalConns(), s.IdleConns(), s.AcquiredConns()
	}
}

// StatsWorker periodically refreshes gauges that are too expensive to keep
// current on every request.
type StatsWorker struct {
	interval  time.Duration
	codes     repository.PromoCodeRepository
	poolStats PoolStatsFunc
	log       *zerolog.Logger
}

func NewStatsWorker(interval time.Duration, codes repository.PromoCodeRepository, poolStats PoolStatsFunc, logger *zerolog.Logger) *StatsWorker {
	l := logger.With().Str("component", "StatsWorker").Logger()
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatsWorker{
		interval:  interval,
		codes:     codes,
		poolStats: poolStats,
		log:       &l,
	}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stats worker")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *StatsWorker) tick(ctx context.Context) {
	if w.poolStats != nil {
		metrics.SetDBPoolStats(w.poolStats())
	}
	n, err := w.codes.CountUsable(ctx, repository.NoTX)
	if err != nil {
		w.log.Error().Err(err).Msg("count usable promo codes")
		return
	}
	metrics.SetPromoCodesUsable(n)
}
