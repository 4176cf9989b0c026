package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"agridash-backend/internal/models"
)

// ===== In-memory fakes shared by the service tests =====

type fakeStockRepo struct {
	mu      sync.Mutex
	entries map[int64]*models.StockEntry
	nextID  int64

	// hooks for failure injection
	updateErr    error
	failCASTimes int
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{entries: map[int64]*models.StockEntry{}}
}

func (f *fakeStockRepo) add(e *models.StockEntry) *models.StockEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = f.nextID
	e.CreatedAt = time.Now()
	f.entries[e.ID] = e
	return e
}

func (f *fakeStockRepo) List(ctx context.Context) ([]*models.StockEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.StockEntry, 0, len(f.entries))
	for _, e := range f.entries {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeStockRepo) Get(ctx context.Context, id int64) (*models.StockEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (f *fakeStockRepo) GetByName(ctx context.Context, name string) (*models.StockEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.ProductName == name {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStockRepo) Create(ctx context.Context, e *models.StockEntry) error {
	f.add(e)
	return nil
}

func (f *fakeStockRepo) UpdateQuantity(ctx context.Context, id int64, expectedQty, newQty int, status string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return false, f.updateErr
	}
	if f.failCASTimes > 0 {
		f.failCASTimes--
		return false, nil
	}
	e, ok := f.entries[id]
	if !ok || e.QuantityOnHand != expectedQty {
		return false, nil
	}
	e.QuantityOnHand = newQty
	e.Status = status
	return true, nil
}

func (f *fakeStockRepo) UpdateStatus(ctx context.Context, id int64, status string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return false, nil
	}
	e.Status = status
	return true, nil
}

type fakeSaleStore struct {
	mu        sync.Mutex
	sales     []*models.Sale
	nextID    int64
	createErr []error // consumed one per Create call
}

func (f *fakeSaleStore) Create(ctx context.Context, s *models.Sale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createErr) > 0 {
		err := f.createErr[0]
		f.createErr = f.createErr[1:]
		if err != nil {
			return err
		}
	}
	f.nextID++
	s.ID = f.nextID
	s.CreatedAt = time.Now()
	copied := *s
	f.sales = append(f.sales, &copied)
	return nil
}

func (f *fakeSaleStore) List(ctx context.Context) ([]*models.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Sale, len(f.sales))
	copy(out, f.sales)
	return out, nil
}

// spyLedger wraps a StockLedger and records which methods were called.
type spyLedger struct {
	inner           StockLedger
	findByNameCalls int
	applyDeltaCalls int
	applyDeltaErr   error
}

func (s *spyLedger) FindByName(ctx context.Context, name string) (*models.StockEntry, error) {
	s.findByNameCalls++
	return s.inner.FindByName(ctx, name)
}

func (s *spyLedger) ApplyDelta(ctx context.Context, id int64, newQuantity int) (*models.StockEntry, error) {
	s.applyDeltaCalls++
	if s.applyDeltaErr != nil {
		return nil, s.applyDeltaErr
	}
	return s.inner.ApplyDelta(ctx, id, newQuantity)
}

type capturedEmit struct {
	targetUserID string
	productName  string
	before       int
	after        int
}

type fakeNotifier struct {
	mu    sync.Mutex
	emits []capturedEmit
	err   error
}

func (f *fakeNotifier) EmitStockChange(ctx context.Context, targetUserID string, entry *models.StockEntry, before, after int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.emits = append(f.emits, capturedEmit{
		targetUserID: targetUserID,
		productName:  entry.ProductName,
		before:       before,
		after:        after,
	})
	return nil
}

type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications map[int64]*models.Notification
	nextID        int64
	createErr     []error // consumed one per Create call
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{notifications: map[int64]*models.Notification{}}
}

func (f *fakeNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createErr) > 0 {
		err := f.createErr[0]
		f.createErr = f.createErr[1:]
		if err != nil {
			return err
		}
	}
	f.nextID++
	n.ID = f.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	copied := *n
	f.notifications[n.ID] = &copied
	return nil
}

func (f *fakeNotificationStore) ListUnread(ctx context.Context, targetUserID string) ([]*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for _, n := range f.notifications {
		if n.Read {
			continue
		}
		if n.TargetUserID != "" && n.TargetUserID != targetUserID {
			continue
		}
		copied := *n
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, id int64, userID string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok {
		return false, nil
	}
	n.Read = true
	n.ReadByUserID = userID
	n.ReadAt = &at
	return true, nil
}

func (f *fakeNotificationStore) MarkAllRead(ctx context.Context, ids []int64, userID string, at time.Time) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var updated []int64
	for _, id := range ids {
		n, ok := f.notifications[id]
		if !ok {
			continue
		}
		n.Read = true
		n.ReadByUserID = userID
		n.ReadAt = &at
		updated = append(updated, id)
	}
	return updated, nil
}

var errBoom = errors.New("boom")
