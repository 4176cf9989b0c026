package handlers

import (
	"net/http"

	"agridash-backend/internal/services"
	"agridash-backend/pkg/utils"
)

type ReportHandler struct {
	service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// SalesCSV streams the filtered sales history as a CSV download. Accepts the
// same query parameters as the sales list endpoint.
func (h *ReportHandler) SalesCSV(w http.ResponseWriter, r *http.Request) {
	filters, field, dir := parseSalesQuery(r)

	data, err := h.service.BuildSalesCSV(r.Context(), filters, field, dir)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="sales.csv"`)
	w.Write(data)
}

// SalesPDF streams the filtered sales history as a PDF download.
func (h *ReportHandler) SalesPDF(w http.ResponseWriter, r *http.Request) {
	filters, field, dir := parseSalesQuery(r)

	data, err := h.service.BuildSalesPDF(r.Context(), filters, field, dir)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="sales.pdf"`)
	w.Write(data)
}
