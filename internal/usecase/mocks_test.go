//go:build !integration

package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"membership-payments/internal/domain"
	"membership-payments/internal/domain/model"
	"membership-payments/internal/domain/ports/adapter"
	"membership-payments/internal/domain/ports/repository"
)

// memOrderRepo is a small in-memory implementation used by unit tests.
type memOrderRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Order
	saveErr error // used by tests to simulate save failures
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{store: make(map[string]*model.Order)}
}

var _ repository.OrderRepository = (*memOrderRepo)(nil)

func (m *memOrderRepo) Save(ctx context.Context, qx repository.Tx, o *model.Order) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.store[o.ID] = &cp
	return nil
}

func (m *memOrderRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) UpdateStatus(ctx context.Context, qx repository.Tx, id string, status model.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

// memRecordRepo enforces the same payment_id uniqueness the real table does.
type memRecordRepo struct {
	mu    sync.RWMutex
	store map[string]*model.PaymentRecord // by PaymentID
}

func newMemRecordRepo() *memRecordRepo {
	return &memRecordRepo{store: make(map[string]*model.PaymentRecord)}
}

var _ repository.PaymentRecordRepository = (*memRecordRepo)(nil)

func (m *memRecordRepo) Append(ctx context.Context, qx repository.Tx, rec *model.PaymentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[rec.PaymentID]; ok {
		return domain.ErrAlreadyProcessed
	}
	cp := *rec
	m.store[rec.PaymentID] = &cp
	return nil
}

func (m *memRecordRepo) FindByPaymentID(ctx context.Context, qx repository.Tx, paymentID string) (*model.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.store[paymentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memRecordRepo) ListByUser(ctx context.Context, qx repository.Tx, userID string) ([]*model.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.PaymentRecord
	for _, rec := range m.store {
		if rec.UserID == userID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memMembershipRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Membership
}

func newMemMembershipRepo() *memMembershipRepo {
	return &memMembershipRepo{store: make(map[string]*model.Membership)}
}

var _ repository.MembershipRepository = (*memMembershipRepo)(nil)

func (m *memMembershipRepo) Save(ctx context.Context, qx repository.Tx, ms *model.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ms
	m.store[ms.UserID] = &cp
	return nil
}

func (m *memMembershipRepo) FindByUser(ctx context.Context, qx repository.Tx, userID string) (*model.Membership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ms, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ms
	return &cp, nil
}

// mockGateway lets tests script every gateway answer.
type mockGateway struct {
	mu         sync.Mutex
	name       string
	configured bool
	simulated  bool
	createErr  error
	seq        int
	lastAmount int64
}

var _ adapter.CheckoutGateway = (*mockGateway)(nil)

func (g *mockGateway) Name() string     { return g.name }
func (g *mockGateway) Configured() bool { return g.configured }
func (g *mockGateway) Simulated() bool  { return g.simulated }

func (g *mockGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return "", "", g.createErr
	}
	g.seq++
	g.lastAmount = amount
	return fmt.Sprintf("order_%d", g.seq), "key_test", nil
}

// mockTxManager runs the function directly; the in-memory repos have no
// transaction semantics to enforce.
type mockTxManager struct {
	calls int
}

var _ repository.TransactionManager = (*mockTxManager)(nil)

func (m *mockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.calls++
	return fn(ctx, repository.NoTX)
}

// memLocker counts lock traffic so tests can assert the verifier serializes
// per user.
type memLocker struct {
	mu    sync.Mutex
	locks int
	held  map[string]string
}

func newMemLocker() *memLocker { return &memLocker{held: make(map[string]string)} }

func (l *memLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locks++
	token := "tok"
	l.held[key] = token
	return token, nil
}

func (l *memLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

type memMarker struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemMarker() *memMarker { return &memMarker{seen: make(map[string]bool)} }

func (m *memMarker) Seen(ctx context.Context, paymentID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[paymentID]
}

func (m *memMarker) Mark(ctx context.Context, paymentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[paymentID] = true
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func testCatalog() *model.Catalog {
	c, err := model.NewCatalog(
		model.Plan{Tier: model.TierMonthlyPremium, Price: 9900, Currency: "INR", Duration: 30 * 24 * time.Hour},
		model.Plan{Tier: model.TierYearlyPremium, Price: 99900, Currency: "INR", Duration: 365 * 24 * time.Hour},
	)
	if err != nil {
		panic(err)
	}
	return c
}
