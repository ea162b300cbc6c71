package services

import (
	"bytes"
	"context"
	"fmt"

	"staffdesk/internal/models"
	"staffdesk/internal/timeutil"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const maxExportRows = 10000

// ReportService renders ledger exports over the same filter and aggregate
// the list endpoint uses.
type ReportService struct {
	Transactions *TransactionService
}

func NewReportService(transactions *TransactionService) *ReportService {
	return &ReportService{Transactions: transactions}
}

func formatRupiah(d decimal.Decimal) string {
	return "Rp " + d.StringFixed(2)
}

func describeFilter(f models.TransactionFilter) string {
	desc := "All transactions"
	if f.Type != "" {
		desc = string(f.Type)
	}
	if f.Category != "" {
		desc += " / " + string(f.Category)
	}
	if f.Start != nil {
		desc += " from " + timeutil.FormatWIB(*f.Start, timeutil.DateLayout)
	}
	if f.End != nil {
		desc += " until " + timeutil.FormatWIB(*f.End, timeutil.DateLayout)
	}
	return desc
}

// ExportPDF renders the filtered ledger as an A4 PDF.
func (s *ReportService) ExportPDF(ctx context.Context, p models.Principal, f models.TransactionFilter) ([]byte, error) {
	rows, summary, err := s.Transactions.all(ctx, p, f)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Ledger Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, describeFilter(f), "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format(timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(25, 7, "Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(22, 7, "Type", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Category", "1", 0, "C", true, 0, "")
	pdf.CellFormat(73, 7, "Description", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Amount", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, t := range rows {
		desc := t.Description
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		pdf.CellFormat(25, 6, timeutil.FormatWIB(t.Date, timeutil.DateLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, 6, string(t.Type), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, string(t.Category), "1", 0, "L", false, 0, "")
		pdf.CellFormat(73, 6, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, formatRupiah(t.Amount), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(190, 8, "Summary", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(63, 8, "Income: "+formatRupiah(summary.TotalIncome), "1", 0, "C", false, 0, "")
	pdf.CellFormat(63, 8, "Expense: "+formatRupiah(summary.TotalExpense), "1", 0, "C", false, 0, "")

	if summary.NetIncome.IsNegative() {
		pdf.SetFillColor(255, 200, 200)
	} else {
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(64, 8, "Net: "+formatRupiah(summary.NetIncome), "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportXLSX renders the filtered ledger as a workbook with a totals block
// under the rows.
func (s *ReportService) ExportXLSX(ctx context.Context, p models.Principal, f models.TransactionFilter) ([]byte, error) {
	rows, summary, err := s.Transactions.all(ctx, p, f)
	if err != nil {
		return nil, err
	}

	x := excelize.NewFile()
	defer x.Close()

	sheetName := "Transactions"
	index, err := x.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	x.SetActiveSheet(index)
	x.DeleteSheet("Sheet1")

	headers := []string{"ID", "Date", "Type", "Category", "Description", "Amount", "Recorded By"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		x.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := x.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err == nil {
		x.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	for i, t := range rows {
		recordedBy := ""
		if t.CreatedBy != nil {
			recordedBy = t.CreatedBy.FullName
		}
		amount, _ := t.Amount.Float64()
		values := []interface{}{
			t.ID,
			timeutil.FormatWIB(t.Date, timeutil.DateLayout),
			string(t.Type),
			string(t.Category),
			t.Description,
			amount,
			recordedBy,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			x.SetCellValue(sheetName, cell, v)
		}
	}

	totalsRow := len(rows) + 3
	totals := []struct {
		label string
		value decimal.Decimal
	}{
		{"Total income", summary.TotalIncome},
		{"Total expense", summary.TotalExpense},
		{"Net income", summary.NetIncome},
	}
	for i, t := range totals {
		v, _ := t.value.Float64()
		x.SetCellValue(sheetName, fmt.Sprintf("E%d", totalsRow+i), t.label)
		x.SetCellValue(sheetName, fmt.Sprintf("F%d", totalsRow+i), v)
	}

	x.SetColWidth(sheetName, "A", "A", 8)
	x.SetColWidth(sheetName, "B", "D", 15)
	x.SetColWidth(sheetName, "E", "E", 40)
	x.SetColWidth(sheetName, "F", "G", 18)

	buf, err := x.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
