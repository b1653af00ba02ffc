package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "biopsycli/internal/errors"
	"biopsycli/internal/fields"
	"biopsycli/pkg/contracts/domain"
)

// headerScanRows bounds how far down a sheet the header row is searched.
const headerScanRows = 10

// ParseWorkbook reads the register sheet of an XLSX export. Cells are
// trimmed, rows above the header and rows without any value are dropped.
func ParseWorkbook(filePath string, logger *slog.Logger) (*domain.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.NewStorageError("open workbook", err).WithContext("path", filePath)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			logger.Warn("Skipping unreadable sheet",
				slog.String("sheet", sheet),
				slog.String("error", err.Error()))
			continue
		}

		headerRow := findHeaderRow(rows)
		if headerRow < 0 {
			continue
		}

		t := tableFrom(rows[headerRow:])
		logger.Info("Found register sheet",
			slog.String("sheet", sheet),
			slog.Int("header_row", headerRow),
			slog.Int("columns", len(t.Headers)),
			slog.Int("rows", len(t.Rows)))

		if len(t.Rows) == 0 {
			return nil, apperrors.NewParsingError(fmt.Sprintf("sheet %s has no data rows", sheet), nil)
		}
		return t, nil
	}

	return nil, apperrors.NewParsingError("could not find register sheet in workbook", nil).
		WithContext("path", filePath)
}

// findHeaderRow returns the index of the first row naming both a biopsy
// number and a patient name column, or -1.
func findHeaderRow(rows [][]string) int {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		if hasColumn(rows[i], domain.FieldBiopsyNumber) && hasColumn(rows[i], domain.FieldName) {
			return i
		}
	}
	return -1
}

func hasColumn(row []string, f domain.Field) bool {
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		for _, c := range fields.Candidates(f) {
			if strings.EqualFold(cell, c) {
				return true
			}
		}
	}
	return false
}

func tableFrom(rows [][]string) *domain.Table {
	t := &domain.Table{Headers: trimCells(rows[0])}
	for _, row := range rows[1:] {
		cells := trimCells(row)
		if isBlank(cells) {
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
