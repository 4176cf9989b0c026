package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"agridash-backend/internal/models"
)

// SaleRepository persists sale records. Sales are append-only: there is no
// update or delete path.
type SaleRepository struct {
	DB *pgxpool.Pool
}

func NewSaleRepository(db *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{DB: db}
}

func (r *SaleRepository) Create(ctx context.Context, s *models.Sale) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO sales (product_name, quantity, unit_value, total_value, member_name)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		s.ProductName, s.Quantity, s.UnitValue, s.TotalValue, s.MemberName).
		Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}
	return nil
}

// List returns all sales, newest first. Filtering, sorting and pagination
// happen in memory so the same engine serves exports and the API.
func (r *SaleRepository) List(ctx context.Context) ([]*models.Sale, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, product_name, quantity, unit_value, total_value, member_name, created_at
		 FROM sales ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	var sales []*models.Sale
	for rows.Next() {
		var s models.Sale
		if err := rows.Scan(&s.ID, &s.ProductName, &s.Quantity, &s.UnitValue,
			&s.TotalValue, &s.MemberName, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, &s)
	}
	return sales, rows.Err()
}
