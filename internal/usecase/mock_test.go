//go:build !integration

package usecase_test

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"promo-redemption/internal/domain"
	"promo-redemption/internal/domain/model"
	"promo-redemption/internal/domain/ports/repository"
	"promo-redemption/internal/infra/worker"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// =============================
// In-memory store shared by the repositories
// =============================

type memState struct {
	codes  map[string]model.PromoCode
	usages []model.PromoCodeUsage
	subs   map[string]model.Subscription
}

type memStore struct {
	mu sync.Mutex
	memState
}

func newMemStore() *memStore {
	return &memStore{memState: memState{
		codes: map[string]model.PromoCode{},
		subs:  map[string]model.Subscription{},
	}}
}

func (s *memStore) snapshot() memState {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := memState{
		codes:  make(map[string]model.PromoCode, len(s.codes)),
		usages: append([]model.PromoCodeUsage(nil), s.usages...),
		subs:   make(map[string]model.Subscription, len(s.subs)),
	}
	for k, v := range s.codes {
		cp.codes[k] = v
	}
	for k, v := range s.subs {
		cp.subs[k] = v
	}
	return cp
}

func (s *memStore) restore(st memState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memState = st
}

func (s *memStore) code(code string) (model.PromoCode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.codes[code]
	return p, ok
}

func (s *memStore) ledger() []model.PromoCodeUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.PromoCodeUsage(nil), s.usages...)
}

func (s *memStore) sub(userID string) (model.Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.subs[userID]
	return v, ok
}

// ---- Mock TransactionManager ----

// memTx marks calls made inside MockTxManager.WithTx.
type memTx struct{}

// MockTxManager runs one transaction at a time, which stands in for the row
// lock, and restores the store when fn fails.
type MockTxManager struct {
	store *memStore
	txMu  sync.Mutex

	mu        sync.Mutex
	Commits   int
	Rollbacks int

	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager(store *memStore) *MockTxManager {
	return &MockTxManager{store: store}
}

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.store.snapshot()
	hooked, runHooks := repository.WithCommitHooks(ctx)
	if err := fn(hooked, memTx{}); err != nil {
		m.store.restore(snap)
		m.mu.Lock()
		m.Rollbacks++
		m.mu.Unlock()
		return err
	}
	m.mu.Lock()
	m.Commits++
	m.mu.Unlock()
	runHooks(ctx)
	return nil
}

func (m *MockTxManager) counts() (commits, rollbacks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Commits, m.Rollbacks
}

// ---- Mock PromoCodeRepository ----

type MockPromoCodeRepo struct {
	store *memStore

	CreateErr        error
	FindForUpdateErr error
	IncrementErr     error
}

var _ repository.PromoCodeRepository = (*MockPromoCodeRepo)(nil)

func NewMockPromoCodeRepo(store *memStore) *MockPromoCodeRepo {
	return &MockPromoCodeRepo{store: store}
}

func (m *MockPromoCodeRepo) Create(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.codes[p.Code]; ok {
		return domain.ErrDuplicateCode
	}
	m.store.codes[p.Code] = *p
	return nil
}

func (m *MockPromoCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	p, ok := m.store.code(code)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *MockPromoCodeRepo) FindByCodeForUpdate(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	if _, ok := tx.(memTx); !ok {
		return nil, domain.ErrInvalidExecContext
	}
	if m.FindForUpdateErr != nil {
		return nil, m.FindForUpdateErr
	}
	return m.FindByCode(ctx, tx, code)
}

func (m *MockPromoCodeRepo) IncrementUsage(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	if m.IncrementErr != nil {
		return m.IncrementErr
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	stored, ok := m.store.codes[p.Code]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.CurrentUses >= stored.MaxUses {
		return domain.ErrCodeCannotUse
	}
	stored.MarkUsed()
	m.store.codes[p.Code] = stored
	p.CurrentUses = stored.CurrentUses
	return nil
}

func (m *MockPromoCodeRepo) SetDisabled(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	stored, ok := m.store.codes[p.Code]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Disabled = p.Disabled
	m.store.codes[p.Code] = stored
	return nil
}

func (m *MockPromoCodeRepo) CountUsable(ctx context.Context, tx repository.Tx) (int, error) {
	return 0, nil
}

// ---- Mock PromoCodeUsageRepository ----

type MockUsageRepo struct {
	store     *memStore
	RecordErr error
}

var _ repository.PromoCodeUsageRepository = (*MockUsageRepo)(nil)

func NewMockUsageRepo(store *memStore) *MockUsageRepo {
	return &MockUsageRepo{store: store}
}

func (m *MockUsageRepo) Record(ctx context.Context, tx repository.Tx, u *model.PromoCodeUsage) error {
	if m.RecordErr != nil {
		return m.RecordErr
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.usages = append(m.store.usages, *u)
	return nil
}

func (m *MockUsageRepo) ListByCode(ctx context.Context, tx repository.Tx, promoCodeID string, limit int) ([]*model.PromoCodeUsage, error) {
	var out []*model.PromoCodeUsage
	for _, u := range m.store.ledger() {
		if u.PromoCodeID == promoCodeID {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UsedAt.Equal(out[j].UsedAt) {
			return out[i].UsedAt.After(out[j].UsedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockUsageRepo) CountSuccessByCode(ctx context.Context, tx repository.Tx, promoCodeID string) (int, error) {
	n := 0
	for _, u := range m.store.ledger() {
		if u.PromoCodeID == promoCodeID && u.Success {
			n++
		}
	}
	return n, nil
}

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	store   *memStore
	SaveErr error

	mu     sync.Mutex
	Locked []string
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo(store *memStore) *MockSubscriptionRepo {
	return &MockSubscriptionRepo{store: store}
}

func (m *MockSubscriptionRepo) LockUser(ctx context.Context, tx repository.Tx, userID string) error {
	if _, ok := tx.(memTx); !ok {
		return domain.ErrInvalidExecContext
	}
	m.mu.Lock()
	m.Locked = append(m.Locked, userID)
	m.mu.Unlock()
	return nil
}

func (m *MockSubscriptionRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	s, ok := m.store.sub(userID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.subs[s.UserID] = *s
	return nil
}

// ---- Mock SubscriptionExtender ----

type MockExtender struct {
	ExtendFunc func(ctx context.Context, tx repository.Tx, userID string, days int) (*model.SubscriptionState, error)
}

func (m *MockExtender) Extend(ctx context.Context, tx repository.Tx, userID string, days int) (*model.SubscriptionState, error) {
	return m.ExtendFunc(ctx, tx, userID, days)
}

// ---- Mock AuditRecorder ----

type MockAuditRecorder struct {
	mu      sync.Mutex
	Entries []model.AuditEntry
}

func (m *MockAuditRecorder) Record(ctx context.Context, entry model.AuditEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
}

func (m *MockAuditRecorder) entries() []model.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.AuditEntry(nil), m.Entries...)
}

// ---- Mock AuditLogRepository ----

type MockAuditLogRepo struct {
	mu      sync.Mutex
	Saved   []model.AuditEntry
	SaveErr error
}

func (m *MockAuditLogRepo) Save(ctx context.Context, tx repository.Tx, e *model.AuditEntry) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saved = append(m.Saved, *e)
	return nil
}

// ---- Inline task submitter ----

// inlineSubmitter runs tasks synchronously, or rejects them with Err.
type inlineSubmitter struct {
	Err error
}

func (s inlineSubmitter) Submit(task worker.Task) error {
	if s.Err != nil {
		return s.Err
	}
	return task(context.Background())
}
