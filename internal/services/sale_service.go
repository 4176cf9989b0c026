package services

import (
	"context"
	"log"

	"agridash-backend/internal/metrics"
	"agridash-backend/internal/models"
	"agridash-backend/internal/repositories"
	"agridash-backend/internal/salesquery"
)

// StockLedger is the slice of the stock service a sale needs: name lookup
// and the validated quantity write.
type StockLedger interface {
	FindByName(ctx context.Context, name string) (*models.StockEntry, error)
	ApplyDelta(ctx context.Context, id int64, newQuantity int) (*models.StockEntry, error)
}

// SaleStore persists sale records.
type SaleStore interface {
	Create(ctx context.Context, s *models.Sale) error
	List(ctx context.Context) ([]*models.Sale, error)
}

// StockChangeNotifier emits a notification after a stock quantity change.
type StockChangeNotifier interface {
	EmitStockChange(ctx context.Context, targetUserID string, entry *models.StockEntry, before, after int) error
}

// SaleService records sales against the stock ledger. Validation runs
// strictly before any store access: a request that fails shape checks never
// touches the ledger.
type SaleService struct {
	Sales    SaleStore
	Stock    StockLedger
	Notifier StockChangeNotifier
}

func NewSaleService(sales SaleStore, stock StockLedger, notifier StockChangeNotifier) *SaleService {
	return &SaleService{Sales: sales, Stock: stock, Notifier: notifier}
}

// RecordSale validates, persists the sale, decrements stock and emits a
// notification, in that order. Checks run cheapest first: field shape, then
// quantity, then the ledger lookup, then capacity and sufficiency. If the
// stock decrement fails after the sale row landed, the caller gets a
// PartialFailureError carrying the persisted sale id so an operator can
// reconcile. Notification emission is best-effort and never fails the sale.
func (s *SaleService) RecordSale(ctx context.Context, req *models.RecordSaleRequest) (*models.Sale, error) {
	if req.ProductName == "" {
		return nil, &MissingFieldError{Field: "product_name"}
	}
	if req.MemberName == "" {
		return nil, &MissingFieldError{Field: "member_name"}
	}
	if req.Quantity <= 0 {
		return nil, &InvalidQuantityError{Quantity: req.Quantity}
	}

	entry, err := s.Stock.FindByName(ctx, req.ProductName)
	if err != nil {
		return nil, err
	}
	if req.Quantity > entry.QuantityOnHand {
		return nil, &InsufficientStockError{
			ProductName: entry.ProductName,
			Requested:   req.Quantity,
			Available:   entry.QuantityOnHand,
		}
	}
	// Only reachable when a corrupt entry holds more than its capacity;
	// still checked so an oversized sale never slips through on bad data.
	if req.Quantity > entry.Capacity {
		return nil, &CapacityExceededError{
			ProductName: entry.ProductName,
			Requested:   req.Quantity,
			Capacity:    entry.Capacity,
		}
	}

	sale := &models.Sale{
		ProductName: entry.ProductName,
		Quantity:    req.Quantity,
		UnitValue:   entry.UnitSaleValue,
		TotalValue:  entry.UnitSaleValue * float64(req.Quantity),
		MemberName:  req.MemberName,
	}
	if err := s.createWithRetry(ctx, sale); err != nil {
		return nil, err
	}

	before := entry.QuantityOnHand
	after := before - req.Quantity
	if _, err := s.Stock.ApplyDelta(ctx, entry.ID, after); err != nil {
		return nil, &PartialFailureError{SaleID: sale.ID, Step: "stock decrement", Err: err}
	}

	if s.Notifier != nil {
		if err := s.Notifier.EmitStockChange(ctx, "", entry, before, after); err != nil {
			log.Printf("[Sales] notification emit failed for sale %d: %v", sale.ID, err)
		}
	}

	metrics.SalesRecordedTotal.Inc()
	return sale, nil
}

// createWithRetry retries the insert exactly once when the failure looks
// like a transient store fault.
func (s *SaleService) createWithRetry(ctx context.Context, sale *models.Sale) error {
	err := s.Sales.Create(ctx, sale)
	if err == nil {
		return nil
	}
	if !repositories.IsTransient(err) {
		return err
	}
	log.Printf("[Sales] transient store error, retrying once: %v", err)
	if err := s.Sales.Create(ctx, sale); err != nil {
		return &TransientIOError{Op: "sale insert", Err: err}
	}
	return nil
}

// ListSales loads every sale and applies filtering, sorting, pagination and
// aggregation in memory.
func (s *SaleService) ListSales(ctx context.Context, f salesquery.Filters, field salesquery.SortField, dir salesquery.Direction, page, pageSize int) ([]*models.Sale, salesquery.Totals, error) {
	all, err := s.Sales.List(ctx)
	if err != nil {
		return nil, salesquery.Totals{}, err
	}
	matched := salesquery.Filter(all, f)
	pageOut := salesquery.SortAndPaginate(matched, field, dir, page, pageSize)
	return pageOut, salesquery.Aggregate(matched), nil
}

// AllSales returns the filtered, sorted full list for report exports.
func (s *SaleService) AllSales(ctx context.Context, f salesquery.Filters, field salesquery.SortField, dir salesquery.Direction) ([]*models.Sale, error) {
	all, err := s.Sales.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := salesquery.Filter(all, f)
	return salesquery.SortAndPaginate(matched, field, dir, 1, len(matched)+1), nil
}
