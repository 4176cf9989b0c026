package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agridash-backend/internal/models"
)

// ===== Status derivation =====

func TestComputeStatusThresholds(t *testing.T) {
	cases := []struct {
		name     string
		quantity int
		capacity int
		want     string
	}{
		{"empty is low", 0, 100, models.StockStatusLow},
		{"exactly 20 percent is low", 20, 100, models.StockStatusLow},
		{"just above 20 percent is medium", 21, 100, models.StockStatusMedium},
		{"exactly 80 percent is medium", 80, 100, models.StockStatusMedium},
		{"just above 80 percent is high", 81, 100, models.StockStatusHigh},
		{"full is high", 100, 100, models.StockStatusHigh},
		{"non-round capacity low boundary", 1, 5, models.StockStatusLow},
		{"non-round capacity high", 5, 6, models.StockStatusHigh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeStatus(tc.quantity, tc.capacity)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComputeStatusZeroCapacity(t *testing.T) {
	_, err := ComputeStatus(10, 0)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "capacity", vErr.Field)
}

// Display coloring uses a 50 percent warning cutoff independent from the 80
// percent status cutoff: an entry can be medium status and warning color.
func TestDisplayLevelIndependentOfStatus(t *testing.T) {
	cases := []struct {
		name     string
		quantity int
		capacity int
		want     string
	}{
		{"at 20 percent is danger", 20, 100, DisplayLevelDanger},
		{"at 21 percent is warning", 21, 100, DisplayLevelWarning},
		{"at 50 percent is warning", 50, 100, DisplayLevelWarning},
		{"at 51 percent is ok", 51, 100, DisplayLevelOK},
		{"full is ok", 100, 100, DisplayLevelOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DisplayLevel(tc.quantity, tc.capacity)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			// status at 60 percent would still be medium while display is ok
			if tc.quantity == 51 {
				status, err := ComputeStatus(tc.quantity, tc.capacity)
				require.NoError(t, err)
				assert.Equal(t, models.StockStatusMedium, status)
			}
		})
	}
}

// ===== ApplyDelta =====

func TestApplyDeltaPersistsQuantityAndStatus(t *testing.T) {
	// GIVEN an entry at 90/100 (high)
	repo := newFakeStockRepo()
	entry := repo.add(&models.StockEntry{ProductName: "Soybean", QuantityOnHand: 90, Capacity: 100, Status: models.StockStatusHigh})
	svc := NewStockService(repo, nil)

	// WHEN the quantity drops to 15
	updated, err := svc.ApplyDelta(context.Background(), entry.ID, 15)

	// THEN quantity and recomputed status are both persisted
	require.NoError(t, err)
	assert.Equal(t, 15, updated.QuantityOnHand)
	assert.Equal(t, models.StockStatusLow, updated.Status)

	stored, err := repo.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, stored.QuantityOnHand)
	assert.Equal(t, models.StockStatusLow, stored.Status)
}

func TestApplyDeltaRejectsNegativeQuantity(t *testing.T) {
	repo := newFakeStockRepo()
	entry := repo.add(&models.StockEntry{ProductName: "Corn", QuantityOnHand: 10, Capacity: 100})
	svc := NewStockService(repo, nil)

	_, err := svc.ApplyDelta(context.Background(), entry.ID, -1)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "new_quantity", vErr.Field)

	// the stored entry is untouched
	stored, _ := repo.Get(context.Background(), entry.ID)
	assert.Equal(t, 10, stored.QuantityOnHand)
}

func TestApplyDeltaRejectsOverCapacity(t *testing.T) {
	repo := newFakeStockRepo()
	entry := repo.add(&models.StockEntry{ProductName: "Corn", QuantityOnHand: 10, Capacity: 100})
	svc := NewStockService(repo, nil)

	_, err := svc.ApplyDelta(context.Background(), entry.ID, 101)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestApplyDeltaUnknownEntry(t *testing.T) {
	svc := NewStockService(newFakeStockRepo(), nil)

	_, err := svc.ApplyDelta(context.Background(), 42, 5)

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, int64(42), nfErr.ID)
}

func TestApplyDeltaRetriesLostRace(t *testing.T) {
	// GIVEN a repo that loses the compare-and-swap once
	repo := newFakeStockRepo()
	entry := repo.add(&models.StockEntry{ProductName: "Wheat", QuantityOnHand: 50, Capacity: 100})
	repo.failCASTimes = 1
	svc := NewStockService(repo, nil)

	// WHEN applying a delta
	updated, err := svc.ApplyDelta(context.Background(), entry.ID, 40)

	// THEN the second attempt succeeds
	require.NoError(t, err)
	assert.Equal(t, 40, updated.QuantityOnHand)
}

func TestApplyDeltaPropagatesStoreError(t *testing.T) {
	repo := newFakeStockRepo()
	entry := repo.add(&models.StockEntry{ProductName: "Wheat", QuantityOnHand: 50, Capacity: 100})
	repo.updateErr = errBoom
	svc := NewStockService(repo, nil)

	_, err := svc.ApplyDelta(context.Background(), entry.ID, 40)

	require.ErrorIs(t, err, errBoom)
}

func TestApplyDeltaGivesUpAfterRetry(t *testing.T) {
	repo := newFakeStockRepo()
	entry := repo.add(&models.StockEntry{ProductName: "Wheat", QuantityOnHand: 50, Capacity: 100})
	repo.failCASTimes = 2
	svc := NewStockService(repo, nil)

	_, err := svc.ApplyDelta(context.Background(), entry.ID, 40)

	var tErr *TransientIOError
	require.ErrorAs(t, err, &tErr)
}

func TestOccupancyPercent(t *testing.T) {
	assert.Equal(t, 25.0, OccupancyPercent(25, 100))
	assert.True(t, math.IsNaN(OccupancyPercent(5, 0)))
}

// ===== FindByName =====

func TestFindByNameExactMatch(t *testing.T) {
	repo := newFakeStockRepo()
	repo.add(&models.StockEntry{ProductName: "Milho Verde", QuantityOnHand: 10, Capacity: 100})
	svc := NewStockService(repo, nil)

	entry, err := svc.FindByName(context.Background(), "Milho Verde")
	require.NoError(t, err)
	assert.Equal(t, "Milho Verde", entry.ProductName)

	// lookup is case-sensitive
	_, err = svc.FindByName(context.Background(), "milho verde")
	var pnfErr *ProductNotFoundError
	require.ErrorAs(t, err, &pnfErr)
	assert.Equal(t, "milho verde", pnfErr.ProductName)
}

// ===== CreateEntry =====

func TestCreateEntryDerivesStatus(t *testing.T) {
	repo := newFakeStockRepo()
	svc := NewStockService(repo, nil)

	entry, err := svc.CreateEntry(context.Background(), &models.CreateStockEntryRequest{
		ProductName:    "Tomato",
		QuantityOnHand: 85,
		Capacity:       100,
		UnitSaleValue:  3.5,
	})

	require.NoError(t, err)
	assert.Equal(t, models.StockStatusHigh, entry.Status)
	assert.NotZero(t, entry.ID)
}

func TestCreateEntryValidation(t *testing.T) {
	svc := NewStockService(newFakeStockRepo(), nil)
	ctx := context.Background()

	_, err := svc.CreateEntry(ctx, &models.CreateStockEntryRequest{Capacity: 100})
	var mErr *MissingFieldError
	require.ErrorAs(t, err, &mErr)

	_, err = svc.CreateEntry(ctx, &models.CreateStockEntryRequest{ProductName: "X", Capacity: 0})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = svc.CreateEntry(ctx, &models.CreateStockEntryRequest{ProductName: "X", Capacity: 10, QuantityOnHand: 11})
	require.ErrorAs(t, err, &vErr)
}
