package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"promo-redemption/internal/domain/model"
	"promo-redemption/internal/domain/ports/repository"
	"promo-redemption/internal/infra/metrics"
	red "promo-redemption/internal/infra/redis"
)

var _ repository.PromoCodeRepository = (*promoCodeRepoCacheDecorator)(nil)

// promoCodeRepoCacheDecorator caches read-only lookups of promo codes. Reads
// made inside a transaction and locked reads always go to the database.
type promoCodeRepoCacheDecorator struct {
	inner repository.PromoCodeRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewPromoCodeRepoCacheDecorator(inner repository.PromoCodeRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.PromoCodeRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &promoCodeRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   ttl,
		log:   logger,
	}
}

func promoCodeKey(code string) string { return "promo_code:" + code }

func (d *promoCodeRepoCacheDecorator) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	if tx != nil {
		return d.inner.FindByCode(ctx, tx, code)
	}
	key := promoCodeKey(code)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var p model.PromoCode
		if json.Unmarshal([]byte(val), &p) == nil {
			metrics.IncCacheRequest("promo_code", "hit")
			return &p, nil
		}
		metrics.IncCacheRequest("promo_code", "miss")
	} else if errors.Is(err, red.Nil) {
		metrics.IncCacheRequest("promo_code", "miss")
	} else {
		d.log.Warn().Err(err).Msg("promo code cache read failed")
		metrics.IncCacheRequest("promo_code", "error")
	}

	p, err := d.inner.FindByCode(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return p, nil
}

func (d *promoCodeRepoCacheDecorator) FindByCodeForUpdate(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	return d.inner.FindByCodeForUpdate(ctx, tx, code)
}

// Write operations must invalidate the cache. Inside a transaction the key is
// dropped again after commit, so a read that raced the write cannot leave the
// pre-commit row cached.

func (d *promoCodeRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	if err := d.inner.Create(ctx, tx, p); err != nil {
		return err
	}
	d.invalidateWrite(ctx, tx, p.Code)
	return nil
}

func (d *promoCodeRepoCacheDecorator) IncrementUsage(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	if err := d.inner.IncrementUsage(ctx, tx, p); err != nil {
		return err
	}
	d.invalidateWrite(ctx, tx, p.Code)
	return nil
}

func (d *promoCodeRepoCacheDecorator) SetDisabled(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	if err := d.inner.SetDisabled(ctx, tx, p); err != nil {
		return err
	}
	d.invalidateWrite(ctx, tx, p.Code)
	return nil
}

func (d *promoCodeRepoCacheDecorator) CountUsable(ctx context.Context, tx repository.Tx) (int, error) {
	return d.inner.CountUsable(ctx, tx)
}

func (d *promoCodeRepoCacheDecorator) invalidateWrite(ctx context.Context, tx repository.Tx, code string) {
	d.invalidate(ctx, code)
	if tx != nil {
		repository.AfterCommit(ctx, func(ctx context.Context) { d.invalidate(ctx, code) })
	}
}

func (d *promoCodeRepoCacheDecorator) invalidate(ctx context.Context, code string) {
	if err := d.cache.Del(ctx, promoCodeKey(code)); err != nil {
		d.log.Warn().Err(err).Msg("promo code cache invalidation failed")
	}
}
