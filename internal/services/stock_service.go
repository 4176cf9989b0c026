package services

import (
	"context"
	"math"

	"agridash-backend/internal/cache"
	"agridash-backend/internal/metrics"
	"agridash-backend/internal/models"
)

// Persisted status thresholds, in percent of capacity. Kept separate from
// the display thresholds below: the dashboard colors a product as "warning"
// at 50% while its persisted status is still medium up to 80%.
const (
	StatusLowMaxPercent  = 20.0
	StatusHighMinPercent = 80.0
)

// Display warning thresholds (coloring only, never persisted).
const (
	DisplayDangerMaxPercent  = 20.0
	DisplayWarningMaxPercent = 50.0
)

// Display levels derived from occupancy for UI coloring.
const (
	DisplayLevelDanger  = "danger"
	DisplayLevelWarning = "warning"
	DisplayLevelOK      = "ok"
)

// StockRepository is the persistence contract for stock entries.
// GetByName returns (nil, nil) when no entry matches: absence is a normal
// outcome and callers must guard it explicitly.
type StockRepository interface {
	List(ctx context.Context) ([]*models.StockEntry, error)
	Get(ctx context.Context, id int64) (*models.StockEntry, error)
	GetByName(ctx context.Context, name string) (*models.StockEntry, error)
	Create(ctx context.Context, e *models.StockEntry) error
	// UpdateQuantity persists quantity and status only when the current
	// quantity still equals expectedQty (compare-and-swap). Returns false
	// when another writer got there first.
	UpdateQuantity(ctx context.Context, id int64, expectedQty, newQty int, status string) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status string) (bool, error)
}

// StockService owns the stock ledger: occupancy-derived status, quantity
// deltas validated against capacity and non-negativity, and name lookups.
type StockService struct {
	Repo  StockRepository
	Cache *cache.Cache
}

func NewStockService(repo StockRepository, c *cache.Cache) *StockService {
	return &StockService{Repo: repo, Cache: c}
}

// ComputeStatus derives the persisted stock status from occupancy.
// capacity == 0 was undefined behavior upstream; here it is a hard
// validation failure, never a silent division by zero.
func ComputeStatus(quantityOnHand, capacity int) (string, error) {
	if capacity <= 0 {
		return "", &ValidationError{Field: "capacity", Reason: "must be greater than zero"}
	}
	pct := float64(quantityOnHand) / float64(capacity) * 100
	switch {
	case pct <= StatusLowMaxPercent:
		return models.StockStatusLow, nil
	case pct <= StatusHighMinPercent:
		return models.StockStatusMedium, nil
	default:
		return models.StockStatusHigh, nil
	}
}

// DisplayLevel derives the UI coloring level from occupancy. Independent of
// the persisted status thresholds.
func DisplayLevel(quantityOnHand, capacity int) (string, error) {
	if capacity <= 0 {
		return "", &ValidationError{Field: "capacity", Reason: "must be greater than zero"}
	}
	pct := float64(quantityOnHand) / float64(capacity) * 100
	switch {
	case pct <= DisplayDangerMaxPercent:
		return DisplayLevelDanger, nil
	case pct <= DisplayWarningMaxPercent:
		return DisplayLevelWarning, nil
	default:
		return DisplayLevelOK, nil
	}
}

func (s *StockService) ListStock(ctx context.Context) ([]*models.StockEntry, error) {
	return s.Repo.List(ctx)
}

func (s *StockService) GetEntry(ctx context.Context, id int64) (*models.StockEntry, error) {
	entry, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, &NotFoundError{Resource: "stock entry", ID: id}
	}
	return entry, nil
}

// FindByName resolves a stock entry by exact, case-sensitive product name.
// Returns NotFoundError when no entry matches; callers treat that as a
// normal outcome, not a fault.
func (s *StockService) FindByName(ctx context.Context, name string) (*models.StockEntry, error) {
	entry, err := s.Repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, &ProductNotFoundError{ProductName: name}
	}
	return entry, nil
}

// CreateEntry registers a new product stock line. Status is derived before
// the insert so the persisted copy is never stale.
func (s *StockService) CreateEntry(ctx context.Context, req *models.CreateStockEntryRequest) (*models.StockEntry, error) {
	if req.ProductName == "" {
		return nil, &MissingFieldError{Field: "product_name"}
	}
	if req.Capacity <= 0 {
		return nil, &ValidationError{Field: "capacity", Reason: "must be greater than zero"}
	}
	if req.QuantityOnHand < 0 {
		return nil, &ValidationError{Field: "quantity_on_hand", Reason: "cannot be negative"}
	}
	if req.QuantityOnHand > req.Capacity {
		return nil, &ValidationError{Field: "quantity_on_hand", Reason: "cannot exceed capacity"}
	}

	status, err := ComputeStatus(req.QuantityOnHand, req.Capacity)
	if err != nil {
		return nil, err
	}

	entry := &models.StockEntry{
		ProductID:           req.ProductID,
		ProductName:         req.ProductName,
		QuantityOnHand:      req.QuantityOnHand,
		Capacity:            req.Capacity,
		Status:              status,
		UnitOfMeasure:       req.UnitOfMeasure,
		UnitProductionValue: req.UnitProductionValue,
		UnitSaleValue:       req.UnitSaleValue,
	}
	if err := s.Repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.Cache.InvalidateStock(ctx)
	return entry, nil
}

// ApplyDelta sets the entry's quantity to newQuantity, recomputes status and
// persists both. Rejections are explicit ValidationErrors, never silent
// clamps. The write is a compare-and-swap against the quantity read here and
// retried once under concurrent modification.
func (s *StockService) ApplyDelta(ctx context.Context, id int64, newQuantity int) (*models.StockEntry, error) {
	const attempts = 2

	var lastErr error
	for i := 0; i < attempts; i++ {
		entry, err := s.Repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, &NotFoundError{Resource: "stock entry", ID: id}
		}

		if newQuantity < 0 {
			metrics.StockRejectionsTotal.WithLabelValues("negative_quantity").Inc()
			return nil, &ValidationError{Field: "new_quantity", Reason: "cannot be negative"}
		}
		if newQuantity > entry.Capacity {
			metrics.StockRejectionsTotal.WithLabelValues("over_capacity").Inc()
			return nil, &ValidationError{Field: "new_quantity", Reason: "cannot exceed capacity"}
		}

		status, err := ComputeStatus(newQuantity, entry.Capacity)
		if err != nil {
			return nil, err
		}

		ok, err := s.Repo.UpdateQuantity(ctx, id, entry.QuantityOnHand, newQuantity, status)
		if err != nil {
			return nil, err
		}
		if ok {
			entry.QuantityOnHand = newQuantity
			entry.Status = status
			s.Cache.InvalidateStock(ctx)
			return entry, nil
		}
		lastErr = &TransientIOError{Op: "stock update", Err: errConcurrentModification{id}}
	}
	return nil, lastErr
}

// SetStatus overrides the persisted status. Used by the UI layer only for
// reconciliation; normal writes go through ApplyDelta.
func (s *StockService) SetStatus(ctx context.Context, id int64, status string) error {
	switch status {
	case models.StockStatusLow, models.StockStatusMedium, models.StockStatusHigh:
	default:
		return &ValidationError{Field: "status", Reason: "must be low, medium or high"}
	}
	ok, err := s.Repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Resource: "stock entry", ID: id}
	}
	s.Cache.InvalidateStock(ctx)
	return nil
}

// OccupancyPercent returns quantity/capacity as a percentage, NaN-safe for
// defensive display code paths.
func OccupancyPercent(quantityOnHand, capacity int) float64 {
	if capacity <= 0 {
		return math.NaN()
	}
	return float64(quantityOnHand) / float64(capacity) * 100
}

type errConcurrentModification struct {
	id int64
}

func (e errConcurrentModification) Error() string {
	return "concurrent modification of stock entry"
}
