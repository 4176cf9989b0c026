package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"agridash-backend/internal/cache"
	"agridash-backend/internal/models"
	"agridash-backend/internal/services"
	"agridash-backend/pkg/utils"
)

type StockHandler struct {
	service *services.StockService
	cache   *cache.Cache
}

func NewStockHandler(service *services.StockService, c *cache.Cache) *StockHandler {
	return &StockHandler{service: service, cache: c}
}

// stockListItem decorates a ledger entry with the occupancy-derived display
// fields the dashboard colors rows with. Coloring is independent from the
// persisted status.
type stockListItem struct {
	*models.StockEntry
	OccupancyPercent float64 `json:"occupancy_percent"`
	DisplayLevel     string  `json:"display_level"`
}

func toListItems(entries []*models.StockEntry) []stockListItem {
	items := make([]stockListItem, 0, len(entries))
	for _, e := range entries {
		item := stockListItem{StockEntry: e}
		if e.Capacity > 0 {
			item.OccupancyPercent = services.OccupancyPercent(e.QuantityOnHand, e.Capacity)
			item.DisplayLevel, _ = services.DisplayLevel(e.QuantityOnHand, e.Capacity)
		}
		items = append(items, item)
	}
	return items
}

// List serves the stock ledger, cached for one minute. Mutations invalidate
// the key, so a stale read window only exists across instances.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	if data, ok := h.cache.Get(r.Context(), cache.StockListKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}

	entries, err := h.service.ListStock(r.Context())
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	data, err := json.Marshal(toListItems(entries))
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	h.cache.Set(r.Context(), cache.StockListKey, data, time.Minute)

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	entry, err := h.service.GetEntry(r.Context(), id)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, entry)
}

func (h *StockHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		utils.Error(w, http.StatusBadRequest, "name query parameter required")
		return
	}

	entry, err := h.service.FindByName(r.Context(), name)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, entry)
}

func (h *StockHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateStockEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.service.CreateEntry(r.Context(), &req)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, entry)
}

// UpdateQuantity applies a quantity change to one stock entry.
func (h *StockHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req models.ApplyDeltaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.service.ApplyDelta(r.Context(), id, req.NewQuantity)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, entry)
}

func (h *StockHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req models.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SetStatus(r.Context(), id, req.Status); err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "status updated"})
}
