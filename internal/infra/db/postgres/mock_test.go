//go:build !integration

package postgres

import (
	"context"
	"time"

	"promo-redemption/internal/domain/model"
	"promo-redemption/internal/domain/ports/repository"
	red "promo-redemption/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerPromoCodeRepo mocks the database repository that the promo code decorator wraps.
type mockInnerPromoCodeRepo struct {
	CreateFunc              func(ctx context.Context, tx repository.Tx, p *model.PromoCode) error
	FindByCodeFunc          func(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error)
	FindByCodeForUpdateFunc func(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error)
	IncrementUsageFunc      func(ctx context.Context, tx repository.Tx, p *model.PromoCode) error
	SetDisabledFunc         func(ctx context.Context, tx repository.Tx, p *model.PromoCode) error
	CountUsableFunc         func(ctx context.Context, tx repository.Tx) (int, error)
}

func (m *mockInnerPromoCodeRepo) Create(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	return m.CreateFunc(ctx, tx, p)
}
func (m *mockInnerPromoCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	return m.FindByCodeFunc(ctx, tx, code)
}
func (m *mockInnerPromoCodeRepo) FindByCodeForUpdate(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	return m.FindByCodeForUpdateFunc(ctx, tx, code)
}
func (m *mockInnerPromoCodeRepo) IncrementUsage(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	return m.IncrementUsageFunc(ctx, tx, p)
}
func (m *mockInnerPromoCodeRepo) SetDisabled(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	return m.SetDisabledFunc(ctx, tx, p)
}
func (m *mockInnerPromoCodeRepo) CountUsable(ctx context.Context, tx repository.Tx) (int, error) {
	return m.CountUsableFunc(ctx, tx)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc   func(ctx context.Context, key string) (string, error)
	SetFunc   func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc   func(ctx context.Context, keys ...string) error
	PingFunc  func(ctx context.Context) error
	CloseFunc func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Close() error                   { return m.CloseFunc() }
