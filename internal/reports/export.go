package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"tallybook/internal/money"
)

const (
	summarySheet = "Summary"
	dailySheet   = "Daily"
)

// WriteXLSX writes the report as a workbook with a summary sheet and one row
// per day.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	summaryRows := [][]any{
		{"Period (days)", r.Summary.Days},
		{"From", r.Summary.From.String()},
		{"To", r.Summary.To.String()},
		{"Revenue", money.Float(r.Summary.Revenue)},
		{"Expenses", money.Float(r.Summary.Expenses)},
		{"Profit", money.Float(r.Summary.Profit)},
		{"Sales", r.Summary.SalesCount},
	}
	for i, row := range summaryRows {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}
	f.SetColWidth(summarySheet, "A", "A", 16)
	f.SetColWidth(summarySheet, "B", "B", 14)

	if _, err := f.NewSheet(dailySheet); err != nil {
		return err
	}
	if err := setRow(f, dailySheet, 1, []any{"Date", "Revenue", "Expenses", "Net"}); err != nil {
		return err
	}
	for i, day := range r.Daily {
		row := []any{
			day.Date.String(),
			money.Float(day.Revenue),
			money.Float(day.Expenses),
			money.Float(day.Revenue.Sub(day.Expenses)),
		}
		if err := setRow(f, dailySheet, i+2, row); err != nil {
			return err
		}
	}
	f.SetColWidth(dailySheet, "A", "A", 12)
	f.SetColWidth(dailySheet, "B", "D", 12)

	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
