package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"biopsycli/internal/stats"
)

// SummarySheet is the first sheet of the workbook.
const SummarySheet = "Summary"

// WriteWorkbook writes s to an XLSX file at path: a summary sheet with the
// per-category counts followed by one sheet per category.
func WriteWorkbook(path string, s stats.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	categories := Categories(s)
	summary := [][]interface{}{
		{"Metric", "Value"},
		{"Total Reports", s.TotalRows},
	}
	for _, c := range categories {
		summary = append(summary, []interface{}{"Distinct " + c.Name, len(c.Entries)})
	}
	if err := writeRows(f, SummarySheet, summary); err != nil {
		return err
	}

	for _, c := range categories {
		if _, err := f.NewSheet(c.Name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", c.Name, err)
		}
		rows := [][]interface{}{{c.Name, "Count", "Percent"}}
		for _, e := range c.Entries {
			rows = append(rows, []interface{}{e.Value, e.Count, e.Percent})
		}
		if err := writeRows(f, c.Name, rows); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
