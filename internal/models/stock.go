package models

import "time"

// Stock status values persisted alongside each entry.
// Recomputed on every quantity or capacity write.
const (
	StockStatusLow    = "low"
	StockStatusMedium = "medium"
	StockStatusHigh   = "high"
)

type StockEntry struct {
	ID                  int64     `json:"id"`
	ProductID           int64     `json:"product_id"`
	ProductName         string    `json:"product_name"` // unique - sales look entries up by name
	QuantityOnHand      int       `json:"quantity_on_hand"`
	Capacity            int       `json:"capacity"`
	Status              string    `json:"status"` // low, medium, high (derived, persisted)
	UnitOfMeasure       string    `json:"unit_of_measure"`
	UnitProductionValue float64   `json:"unit_production_value"`
	UnitSaleValue       float64   `json:"unit_sale_value"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// CreateStockEntryRequest represents the request body for registering stock
type CreateStockEntryRequest struct {
	ProductID           int64   `json:"product_id"`
	ProductName         string  `json:"product_name"`
	QuantityOnHand      int     `json:"quantity_on_hand"`
	Capacity            int     `json:"capacity"`
	UnitOfMeasure       string  `json:"unit_of_measure"`
	UnitProductionValue float64 `json:"unit_production_value"`
	UnitSaleValue       float64 `json:"unit_sale_value"`
}

// ApplyDeltaRequest represents the request body for a quantity update
type ApplyDeltaRequest struct {
	NewQuantity int `json:"new_quantity"`
}

// SetStatusRequest represents the request body for a manual status override
type SetStatusRequest struct {
	Status string `json:"status"`
}
