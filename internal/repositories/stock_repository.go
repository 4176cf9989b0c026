package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agridash-backend/internal/models"
)

// StockRepository persists stock entries in PostgreSQL.
type StockRepository struct {
	DB *pgxpool.Pool
}

func NewStockRepository(db *pgxpool.Pool) *StockRepository {
	return &StockRepository{DB: db}
}

const stockColumns = `id, product_id, product_name, quantity_on_hand, capacity, status,
	unit_of_measure, unit_production_value, unit_sale_value, created_at, updated_at`

func scanStockEntry(row pgx.Row) (*models.StockEntry, error) {
	var e models.StockEntry
	err := row.Scan(&e.ID, &e.ProductID, &e.ProductName, &e.QuantityOnHand, &e.Capacity,
		&e.Status, &e.UnitOfMeasure, &e.UnitProductionValue, &e.UnitSaleValue,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *StockRepository) List(ctx context.Context) ([]*models.StockEntry, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+stockColumns+` FROM stock_entries ORDER BY product_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.StockEntry
	for rows.Next() {
		e, err := scanStockEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *StockRepository) Get(ctx context.Context, id int64) (*models.StockEntry, error) {
	e, err := scanStockEntry(r.DB.QueryRow(ctx,
		`SELECT `+stockColumns+` FROM stock_entries WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock entry %d: %w", id, err)
	}
	return e, nil
}

// GetByName resolves a stock entry by exact product name. Absence is not an
// error: (nil, nil) is returned and the caller decides how to surface it.
func (r *StockRepository) GetByName(ctx context.Context, name string) (*models.StockEntry, error) {
	e, err := scanStockEntry(r.DB.QueryRow(ctx,
		`SELECT `+stockColumns+` FROM stock_entries WHERE product_name = $1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock entry by name: %w", err)
	}
	return e, nil
}

func (r *StockRepository) Create(ctx context.Context, e *models.StockEntry) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO stock_entries
			(product_id, product_name, quantity_on_hand, capacity, status,
			 unit_of_measure, unit_production_value, unit_sale_value)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		e.ProductID, e.ProductName, e.QuantityOnHand, e.Capacity, e.Status,
		e.UnitOfMeasure, e.UnitProductionValue, e.UnitSaleValue).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create stock entry: %w", err)
	}
	return nil
}

// UpdateQuantity is a compare-and-swap: the write only lands when the stored
// quantity still matches expectedQty. Returns false on a lost race so the
// caller can re-read and retry.
func (r *StockRepository) UpdateQuantity(ctx context.Context, id int64, expectedQty, newQty int, status string) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE stock_entries
		 SET quantity_on_hand = $1, status = $2, updated_at = NOW()
		 WHERE id = $3 AND quantity_on_hand = $4`,
		newQty, status, id, expectedQty)
	if err != nil {
		return false, fmt.Errorf("failed to update stock quantity: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *StockRepository) UpdateStatus(ctx context.Context, id int64, status string) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE stock_entries SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	if err != nil {
		return false, fmt.Errorf("failed to update stock status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
