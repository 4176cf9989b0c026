package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agridash-backend/internal/models"
	"agridash-backend/internal/services"
)

type stubStockRepo struct {
	entries []*models.StockEntry
}

func (s *stubStockRepo) List(ctx context.Context) ([]*models.StockEntry, error) {
	return s.entries, nil
}

func (s *stubStockRepo) Get(ctx context.Context, id int64) (*models.StockEntry, error) {
	return nil, nil
}

func (s *stubStockRepo) GetByName(ctx context.Context, name string) (*models.StockEntry, error) {
	return nil, nil
}

func (s *stubStockRepo) Create(ctx context.Context, e *models.StockEntry) error {
	return nil
}

func (s *stubStockRepo) UpdateQuantity(ctx context.Context, id int64, expectedQty, newQty int, status string) (bool, error) {
	return true, nil
}

func (s *stubStockRepo) UpdateStatus(ctx context.Context, id int64, status string) (bool, error) {
	return true, nil
}

func TestStockListCarriesOccupancyAndDisplayLevel(t *testing.T) {
	repo := &stubStockRepo{entries: []*models.StockEntry{
		{ID: 1, ProductName: "Coffee", QuantityOnHand: 10, Capacity: 100, Status: models.StockStatusLow},
		{ID: 2, ProductName: "Corn", QuantityOnHand: 40, Capacity: 100, Status: models.StockStatusMedium},
		{ID: 3, ProductName: "Soybean", QuantityOnHand: 90, Capacity: 100, Status: models.StockStatusHigh},
	}}
	h := NewStockHandler(services.NewStockService(repo, nil), nil)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/stock", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var items []struct {
		ProductName      string  `json:"product_name"`
		OccupancyPercent float64 `json:"occupancy_percent"`
		DisplayLevel     string  `json:"display_level"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 3)
	assert.Equal(t, 10.0, items[0].OccupancyPercent)
	assert.Equal(t, services.DisplayLevelDanger, items[0].DisplayLevel)
	assert.Equal(t, services.DisplayLevelWarning, items[1].DisplayLevel)
	assert.Equal(t, services.DisplayLevelOK, items[2].DisplayLevel)
}

func TestStockListEmptyLedger(t *testing.T) {
	h := NewStockHandler(services.NewStockService(&stubStockRepo{}, nil), nil)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/stock", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
