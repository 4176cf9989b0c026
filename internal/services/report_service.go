package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf/v2"

	"agridash-backend/internal/salesquery"
	"agridash-backend/internal/timeutil"
)

// ReportService renders sales exports. Both formats share the filter and
// aggregation engine so the numbers on the PDF footer always match the CSV.
type ReportService struct {
	Sales *SaleService
}

func NewReportService(sales *SaleService) *ReportService {
	return &ReportService{Sales: sales}
}

// BuildSalesCSV renders the filtered sales as CSV with a trailing totals row.
func (r *ReportService) BuildSalesCSV(ctx context.Context, f salesquery.Filters, field salesquery.SortField, dir salesquery.Direction) ([]byte, error) {
	sales, err := r.Sales.AllSales(ctx, f, field, dir)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"ID", "Product", "Quantity", "Unit Value", "Total Value", "Member", "Date"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, s := range sales {
		record := []string{
			strconv.FormatInt(s.ID, 10),
			s.ProductName,
			strconv.Itoa(s.Quantity),
			fmt.Sprintf("%.2f", s.UnitValue),
			fmt.Sprintf("%.2f", s.TotalValue),
			s.MemberName,
			timeutil.FormatBRT(s.CreatedAt),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	totals := salesquery.Aggregate(sales)
	if err := w.Write([]string{"", "TOTAL", strconv.Itoa(totals.TotalQuantity), "",
		fmt.Sprintf("%.2f", totals.TotalValue), "", ""}); err != nil {
		return nil, fmt.Errorf("failed to write csv totals: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildSalesPDF renders the filtered sales as a tabular PDF report.
func (r *ReportService) BuildSalesPDF(ctx context.Context, f salesquery.Filters, field salesquery.SortField, dir salesquery.Direction) ([]byte, error) {
	sales, err := r.Sales.AllSales(ctx, f, field, dir)
	if err != nil {
		return nil, err
	}
	totals := salesquery.Aggregate(sales)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Sales Report", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Sales Report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated at %s", timeutil.FormatBRT(timeutil.NowBRT())))
	pdf.Ln(10)

	headers := []string{"Product", "Qty", "Unit Value", "Total Value", "Member", "Date"}
	widths := []float64{45, 15, 25, 25, 40, 40}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, s := range sales {
		pdf.CellFormat(widths[0], 6, s.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, strconv.Itoa(s.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.2f", s.UnitValue), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.2f", s.TotalValue), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, s.MemberName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[5], 6, timeutil.FormatBRT(s.CreatedAt), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(widths[0], 7, "TOTAL", "1", 0, "L", true, 0, "")
	pdf.CellFormat(widths[1], 7, strconv.Itoa(totals.TotalQuantity), "1", 0, "R", true, 0, "")
	pdf.CellFormat(widths[2], 7, "", "1", 0, "R", true, 0, "")
	pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.2f", totals.TotalValue), "1", 0, "R", true, 0, "")
	pdf.CellFormat(widths[4]+widths[5], 7, fmt.Sprintf("%d sale(s)", totals.Count), "1", 0, "L", true, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
