// Package export renders interval results as spreadsheets.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/mtr03-counter/internal/domain/production"
)

const (
	// SheetName is the only sheet in the workbook.
	SheetName = "Resultados"
	// DefaultFileName is the download name offered for the workbook.
	DefaultFileName = "resultados_mtr03.xlsx"
	// DefaultCSVFileName is the download name offered for the CSV export.
	DefaultCSVFileName = "resultados_mtr03.csv"
)

// Header is the column row shared by every export format.
var Header = []string{"Início", "Fim", "Total Ovos", "Ovos Bons"}

// WriteExcel renders results as an XLSX workbook with a single sheet.
// Dates are written as dd/mm/yyyy text and counts as numbers.
func WriteExcel(results []production.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			production.FormatDate(r.Start),
			production.FormatDate(r.End),
			r.Total.InexactFloat64(),
			r.Good.InexactFloat64(),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
