package services

import "fmt"

// ValidationError reports bad input shape or range (missing field,
// non-numeric quantity, value out of bounds). Always recoverable by the
// caller; never retried automatically.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// MissingFieldError reports an empty required field. Checked before any
// store access, so a missing field never reaches the stock ledger.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// InvalidQuantityError reports a quantity that is not a positive integer.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be a positive integer, got %d", e.Quantity)
}

// ProductNotFoundError reports a sale referencing a product with no stock
// entry. Absence is a normal outcome (product may have been removed
// concurrently); the user must re-select.
type ProductNotFoundError struct {
	ProductName string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("no stock entry for product %q", e.ProductName)
}

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// InsufficientStockError reports a sale quantity exceeding what is on hand.
// The message always carries the available quantity.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// CapacityExceededError reports a sale quantity exceeding the entry's
// capacity. The message always carries the capacity.
type CapacityExceededError struct {
	ProductName string
	Requested   int
	Capacity    int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("quantity %d exceeds capacity %d for %q",
		e.Requested, e.Capacity, e.ProductName)
}

// PartialFailureError reports a multi-step operation that succeeded
// partially: the sale was persisted but the stock decrement failed. Surfaced
// distinctly so an operator can reconcile; never treated as success.
type PartialFailureError struct {
	SaleID int64
	Step   string
	Err    error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("sale %d persisted but %s failed: %v", e.SaleID, e.Step, e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }

// TransientIOError reports store/network unavailability. The only error
// class retried automatically (once).
type TransientIOError struct {
	Op  string
	Err error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("%s: transient store error: %v", e.Op, e.Err)
}

func (e *TransientIOError) Unwrap() error { return e.Err }
