// Package export renders extraction results into an XLSX workbook for
// bookkeeping handoff.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/belegwerk/invoice-extractor/internal/extract"
)

// Row pairs one extraction result with the source it came from.
type Row struct {
	Source string
	Result *extract.Result
}

// Service produces XLSX bytes from a batch of extraction results.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ResultsXLSX returns a workbook with one row per processed document.
func (s *Service) ResultsXLSX(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"Source",
		"Issuer",
		"Invoice Number",
		"Invoice Date",
		"Due Date",
		"Amount",
		"VAT",
		"Currency",
		"Line Items",
		"Method",
		"Confidence",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	rowIdx := 2
	for _, r := range rows {
		res := r.Result
		if res == nil {
			continue
		}
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowIdx)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.Source)
		write(2, res.Issuer)
		write(3, res.InvoiceNumber)
		write(4, res.InvoiceDate)
		write(5, res.DueDate)
		write(6, decimalCell(res.Amount))
		write(7, decimalCell(res.VAT))
		write(8, res.Currency)
		write(9, truncate(strings.Join(res.LineItems, "; "), 140))
		write(10, string(res.ExtractionMethod))
		write(11, res.Confidence)

		rowIdx++
	}

	_ = f.SetColWidth(sheet, "A", "A", 40) // source path
	_ = f.SetColWidth(sheet, "B", "B", 28) // issuer
	_ = f.SetColWidth(sheet, "C", "C", 20) // invoice number
	_ = f.SetColWidth(sheet, "D", "E", 12) // dates
	_ = f.SetColWidth(sheet, "F", "G", 12) // amounts
	_ = f.SetColWidth(sheet, "I", "I", 48) // line items

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", rowIdx-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func decimalCell(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func truncate(s string, n int) string {
	if n <= 1 || len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
