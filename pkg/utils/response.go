package utils

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"agridash-backend/internal/services"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[HTTP] response encode failed: %v", err)
	}
}

// Error writes a JSON error body with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// ServiceError maps the service error taxonomy onto HTTP status codes and
// writes the error body. Unknown errors become a 500 with a generic message
// so internals never leak.
func ServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr   *services.ValidationError
		missingErr      *services.MissingFieldError
		quantityErr     *services.InvalidQuantityError
		productErr      *services.ProductNotFoundError
		notFoundErr     *services.NotFoundError
		insufficientErr *services.InsufficientStockError
		capacityErr     *services.CapacityExceededError
		partialErr      *services.PartialFailureError
		transientErr    *services.TransientIOError
	)

	switch {
	case errors.As(err, &missingErr),
		errors.As(err, &quantityErr),
		errors.As(err, &validationErr):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &productErr), errors.As(err, &notFoundErr):
		Error(w, http.StatusNotFound, err.Error())
	case errors.As(err, &insufficientErr), errors.As(err, &capacityErr):
		Error(w, http.StatusConflict, err.Error())
	case errors.As(err, &partialErr):
		// The sale row exists even though the flow failed; 500 with the
		// reconciliation detail in the body.
		Error(w, http.StatusInternalServerError, err.Error())
	case errors.As(err, &transientErr):
		Error(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, err.Error())
	default:
		log.Printf("[HTTP] internal error: %v", err)
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}
