package models

import "time"

// Sale is an immutable record of units sold from a stock entry to a
// cooperative member. UnitValue and TotalValue are frozen at creation and
// never recomputed, even if the product price changes later.
type Sale struct {
	ID          int64     `json:"id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitValue   float64   `json:"unit_value"`
	TotalValue  float64   `json:"total_value"`
	MemberName  string    `json:"member_name"` // purchasing cooperative member
	CreatedAt   time.Time `json:"created_at"`
}

// RecordSaleRequest represents the request body for recording a sale
type RecordSaleRequest struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	MemberName  string `json:"member_name"`
}
