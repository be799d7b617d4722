package inventorysvc

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1241007/shop-spark-45/internal/service/errs"
	"github.com/1241007/shop-spark-45/internal/service/models/audit"
	"github.com/1241007/shop-spark-45/internal/service/models/inventory"
)

// memoryInventoryRepo reproduces the conditional-update contract of the
// Postgres repository over a mutex-guarded map.
type memoryInventoryRepo struct {
	mu      sync.Mutex
	records map[int64]*inventory.Record
}

func newMemoryInventoryRepo(records ...inventory.Record) *memoryInventoryRepo {
	repo := &memoryInventoryRepo{records: make(map[int64]*inventory.Record)}
	for i := range records {
		r := records[i]
		repo.records[r.ProductID] = &r
	}
	return repo
}

func (m *memoryInventoryRepo) Get(_ context.Context, productID int64) (*inventory.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[productID]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (m *memoryInventoryRepo) CompareAndSetAvailable(
	_ context.Context,
	productID int64,
	oldAvailable, newAvailable int64,
) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[productID]
	if !ok || r.Available != oldAvailable {
		return false, nil
	}
	r.Available = newAvailable
	return true, nil
}

type memoryAuditRepo struct {
	mu     sync.Mutex
	events []audit.Event
}

func (m *memoryAuditRepo) Publish(_ context.Context, events []audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func newService(repo *memoryInventoryRepo, policy inventory.OversellPolicy) *InventoryService {
	return MustNewInventoryService(
		WithRepository(repo),
		WithAuditRepository(&memoryAuditRepo{}),
		WithMaxRetries(50),
		WithOversellPolicy(policy),
	)
}

func TestDecrement_Simple(t *testing.T) {
	repo := newMemoryInventoryRepo(inventory.Record{
		ProductID: 42, ProductName: "Kettle", UnitPriceMinor: 49900, Available: 10,
	})
	svc := newService(repo, inventory.PolicyClamp)

	remaining, err := svc.Decrement(context.Background(), 42, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), remaining)
}

func TestDecrement_ClampsAtZero(t *testing.T) {
	repo := newMemoryInventoryRepo(inventory.Record{
		ProductID: 42, ProductName: "Kettle", UnitPriceMinor: 49900, Available: 2,
	})
	svc := newService(repo, inventory.PolicyClamp)

	remaining, err := svc.Decrement(context.Background(), 42, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining)

	record, err := svc.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(0), record.Available)
}

func TestDecrement_RejectPolicy(t *testing.T) {
	repo := newMemoryInventoryRepo(inventory.Record{
		ProductID: 42, ProductName: "Kettle", UnitPriceMinor: 49900, Available: 2,
	})
	svc := newService(repo, inventory.PolicyReject)

	_, err := svc.Decrement(context.Background(), 42, 5)
	assert.ErrorIs(t, err, errs.ErrConflict)

	record, err := svc.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(2), record.Available)
}

func TestDecrement_UnknownProduct(t *testing.T) {
	svc := newService(newMemoryInventoryRepo(), inventory.PolicyClamp)

	_, err := svc.Decrement(context.Background(), 99, 1)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDecrement_InvalidQuantity(t *testing.T) {
	svc := newService(newMemoryInventoryRepo(), inventory.PolicyClamp)

	_, err := svc.Decrement(context.Background(), 42, 0)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestDecrement_ConcurrentNeverNegative(t *testing.T) {
	const (
		start   = 100
		workers = 40
		each    = 5
	)

	repo := newMemoryInventoryRepo(inventory.Record{
		ProductID: 42, ProductName: "Kettle", UnitPriceMinor: 49900, Available: start,
	})
	svc := newService(repo, inventory.PolicyClamp)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Decrement(context.Background(), 42, each)
		}()
	}
	wg.Wait()

	record, err := svc.Get(context.Background(), 42)
	require.NoError(t, err)

	// 40 workers want 200 units from 100. The count must bottom out at
	// zero, never below.
	assert.GreaterOrEqual(t, record.Available, int64(0))
	assert.Equal(t, int64(0), record.Available)
}

func TestDecrement_RetryExhaustion(t *testing.T) {
	repo := newMemoryInventoryRepo(inventory.Record{
		ProductID: 42, ProductName: "Kettle", UnitPriceMinor: 49900, Available: 100,
	})
	svc := MustNewInventoryService(
		WithRepository(&alwaysLosingRepo{inner: repo}),
		WithAuditRepository(&memoryAuditRepo{}),
		WithMaxRetries(3),
		WithOversellPolicy(inventory.PolicyClamp),
	)

	_, err := svc.Decrement(context.Background(), 42, 1)
	assert.ErrorIs(t, err, errs.ErrConflict)
}

// alwaysLosingRepo simulates a concurrent writer winning every conditional
// update.
type alwaysLosingRepo struct {
	inner *memoryInventoryRepo
}

func (a *alwaysLosingRepo) Get(ctx context.Context, productID int64) (*inventory.Record, error) {
	return a.inner.Get(ctx, productID)
}

func (a *alwaysLosingRepo) CompareAndSetAvailable(
	context.Context, int64, int64, int64,
) (bool, error) {
	return false, nil
}

func TestRestock(t *testing.T) {
	repo := newMemoryInventoryRepo(inventory.Record{
		ProductID: 42, ProductName: "Kettle", UnitPriceMinor: 49900, Available: 1,
	})
	svc := newService(repo, inventory.PolicyClamp)

	remaining, err := svc.Restock(context.Background(), 42, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(10), remaining)
}
