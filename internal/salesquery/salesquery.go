// Package salesquery filters, sorts, paginates and aggregates sale records
// in memory. All functions are pure: inputs are never mutated and the same
// input always yields the same output, so the dashboard, the CSV export and
// the PDF report all share one engine.
package salesquery

import (
	"math"
	"sort"
	"strings"
	"time"

	"agridash-backend/internal/models"
)

// Filters narrows a sale list. Zero values mean "no constraint": an empty
// substring matches everything and nil dates leave the range open.
type Filters struct {
	ProductSubstring string
	MemberSubstring  string
	DateFrom         *time.Time
	DateTo           *time.Time
}

type SortField string

const (
	SortByProduct  SortField = "product"
	SortByQuantity SortField = "quantity"
	SortByValue    SortField = "value"
	SortByDate     SortField = "date"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Totals aggregates a sale list. Count is the number of records, not the
// summed quantity.
type Totals struct {
	TotalValue    float64 `json:"total_value"`
	TotalQuantity int     `json:"total_quantity"`
	Count         int     `json:"count"`
}

// Filter returns the sales matching all constraints. Substring matches are
// case-insensitive; date bounds are inclusive.
func Filter(sales []*models.Sale, f Filters) []*models.Sale {
	out := make([]*models.Sale, 0, len(sales))
	for _, s := range sales {
		if f.ProductSubstring != "" &&
			!strings.Contains(strings.ToLower(s.ProductName), strings.ToLower(f.ProductSubstring)) {
			continue
		}
		if f.MemberSubstring != "" &&
			!strings.Contains(strings.ToLower(s.MemberName), strings.ToLower(f.MemberSubstring)) {
			continue
		}
		if f.DateFrom != nil && s.CreatedAt.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && s.CreatedAt.After(*f.DateTo) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SortAndPaginate returns one page of the sorted input. The sort is stable,
// so records equal under the sort key keep their incoming order. Pages are
// 1-indexed; a page past the end, a page below 1 or a non-positive pageSize
// yields an empty slice, never an error.
func SortAndPaginate(sales []*models.Sale, field SortField, dir Direction, page, pageSize int) []*models.Sale {
	sorted := make([]*models.Sale, len(sales))
	copy(sorted, sales)

	less := lessFunc(field)
	sort.SliceStable(sorted, func(i, j int) bool {
		if dir == Descending {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})

	if page < 1 || pageSize < 1 {
		return []*models.Sale{}
	}
	start := (page - 1) * pageSize
	if start >= len(sorted) {
		return []*models.Sale{}
	}
	end := start + pageSize
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end]
}

func lessFunc(field SortField) func(a, b *models.Sale) bool {
	switch field {
	case SortByProduct:
		// case-insensitive so "corn" and "Corn" interleave predictably
		return func(a, b *models.Sale) bool {
			return strings.ToLower(a.ProductName) < strings.ToLower(b.ProductName)
		}
	case SortByQuantity:
		return func(a, b *models.Sale) bool { return a.Quantity < b.Quantity }
	case SortByValue:
		return func(a, b *models.Sale) bool { return a.TotalValue < b.TotalValue }
	default:
		return func(a, b *models.Sale) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

// Aggregate sums value and quantity over the input. NaN and infinite totals
// contribute zero so one corrupt record cannot poison the dashboard sum.
func Aggregate(sales []*models.Sale) Totals {
	var t Totals
	for _, s := range sales {
		if !math.IsNaN(s.TotalValue) && !math.IsInf(s.TotalValue, 0) {
			t.TotalValue += s.TotalValue
		}
		t.TotalQuantity += s.Quantity
		t.Count++
	}
	return t
}
