package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"agridash-backend/internal/models"
	"agridash-backend/internal/salesquery"
	"agridash-backend/internal/services"
	"agridash-backend/internal/timeutil"
	"agridash-backend/pkg/utils"
)

type SaleHandler struct {
	service *services.SaleService
}

func NewSaleHandler(service *services.SaleService) *SaleHandler {
	return &SaleHandler{service: service}
}

func (h *SaleHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req models.RecordSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sale, err := h.service.RecordSale(r.Context(), &req)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, sale)
}

type saleListResponse struct {
	Sales    []*models.Sale    `json:"sales"`
	Totals   salesquery.Totals `json:"totals"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// List serves the sales history with filtering, sorting and pagination via
// query parameters. Totals cover the whole filtered set, not just the page.
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, field, dir := parseSalesQuery(r)

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)

	sales, totals, err := h.service.ListSales(r.Context(), filters, field, dir, page, pageSize)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	if sales == nil {
		sales = []*models.Sale{}
	}
	utils.JSON(w, http.StatusOK, saleListResponse{
		Sales:    sales,
		Totals:   totals,
		Page:     page,
		PageSize: pageSize,
	})
}

// parseSalesQuery reads the shared filter/sort query parameters. Date bounds
// use YYYY-MM-DD in local business time; "to" is widened to end of day so a
// single-day range covers the full day.
func parseSalesQuery(r *http.Request) (salesquery.Filters, salesquery.SortField, salesquery.Direction) {
	q := r.URL.Query()

	filters := salesquery.Filters{
		ProductSubstring: q.Get("product"),
		MemberSubstring:  q.Get("member"),
	}
	if from := q.Get("from"); from != "" {
		if t, err := timeutil.ParseInBRT(timeutil.DateLayout, from); err == nil {
			start := timeutil.StartOfDay(t)
			filters.DateFrom = &start
		}
	}
	if to := q.Get("to"); to != "" {
		if t, err := timeutil.ParseInBRT(timeutil.DateLayout, to); err == nil {
			end := timeutil.EndOfDay(t)
			filters.DateTo = &end
		}
	}

	field := salesquery.SortField(q.Get("sort"))
	switch field {
	case salesquery.SortByProduct, salesquery.SortByQuantity, salesquery.SortByValue, salesquery.SortByDate:
	default:
		field = salesquery.SortByDate
	}

	dir := salesquery.Direction(q.Get("dir"))
	if dir != salesquery.Ascending {
		dir = salesquery.Descending
	}
	return filters, field, dir
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
