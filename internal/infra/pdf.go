package infra

// pdf.go: sales summary report rendered with go-pdf/fpdf.
// A4 portrait:
//   - Title and period window
//   - Revenue / order count / profit / margin block
//   - Best-selling dish
//   - Order table (number, time, items, total), newest first

import (
	"fmt"
	"io"

	"kitchenledger/internal/dto"

	"github.com/go-pdf/fpdf"
)

const maxPDFOrderRows = 200

// RenderSalesSummaryPDF writes the summary and the orders of its window to w.
// Only the first maxPDFOrderRows orders are listed.
func RenderSalesSummaryPDF(w io.Writer, summary *dto.SalesSummaryResponse, orders []dto.OrderResponse) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Sales Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Period: %s  (%s to %s)", summary.Period, summary.From, summary.To), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// ── Figures ──────────────────────────────────────────────────────────────
	label := contentW * 0.45
	value := contentW * 0.55
	row := func(k, v string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(label, 6, k, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(value, 6, tr(v), "", 1, "R", false, 0, "")
	}
	row("Revenue", "$"+summary.PeriodRevenue.StringFixed(2))
	row("Orders", fmt.Sprintf("%d", summary.TotalSalesForPeriod))
	row("Profit", "$"+summary.PeriodProfit.StringFixed(2))
	row("Margin", summary.PeriodMargin.StringFixed(2)+"%")
	best := summary.BestSellingDish
	if summary.BestSellingDishCount > 0 {
		best = fmt.Sprintf("%s (x%d)", best, summary.BestSellingDishCount)
	}
	row("Best-selling dish", best)

	if summary.MissingCostData {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(contentW, 5, "Some dishes have incomplete cost data; profit is an upper bound.", "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Orders ───────────────────────────────────────────────────────────────
	col1 := contentW * 0.15 // number
	col2 := contentW * 0.25 // time
	col3 := contentW * 0.40 // items
	col4 := contentW * 0.20 // total

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Order", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Time", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "Items", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for i, o := range orders {
		if i == maxPDFOrderRows {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.CellFormat(contentW, 5, fmt.Sprintf("... %d more orders not shown", len(orders)-maxPDFOrderRows), "", 1, "L", false, 0, "")
			break
		}
		items := fmt.Sprintf("%d", len(o.Lines))
		if len(o.Lines) > 0 {
			items = fmt.Sprintf("%d (%s", len(o.Lines), o.Lines[0].DishName)
			if len(o.Lines) > 1 {
				items += ", ..."
			}
			items += ")"
		}
		if len(items) > 48 {
			items = items[:47] + "..."
		}
		pdf.CellFormat(col1, 5, fmt.Sprintf("#%d", o.OrderNumber), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, o.CreatedAt, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, tr(items), "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 5, "$"+o.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write: %w", err)
	}
	return nil
}
