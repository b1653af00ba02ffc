package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"biopsycli/pkg/contracts/domain"
)

// FrozenTime is the instant returned by FrozenClock.
var FrozenTime = time.Date(2026, time.February, 4, 10, 30, 0, 0, time.UTC)

// FrozenClock always returns FrozenTime.
func FrozenClock() time.Time { return FrozenTime }

// ScenarioHeaders is the header row of the single-case sample export.
var ScenarioHeaders = []string{"ID", "Name", "Age", "Sex", "Receipt Date", "Biopsy No."}

// ScenarioTable returns the single-case sample export.
func ScenarioTable() *domain.Table {
	return &domain.Table{
		Headers: append([]string(nil), ScenarioHeaders...),
		Rows: [][]string{
			{"2001", "Test Patient", "35 years", "Male", "03-02-2026", "KB-001/26"},
		},
	}
}

// SampleTable returns a small mixed export: alternate header spellings,
// one short row and one row without a biopsy number.
func SampleTable() *domain.Table {
	return &domain.Table{
		Headers: []string{
			"Report ID", "Patient Name", "Age", "Gender", "Receipt Date", "Year",
			"Biopsy Number", "Referred by", "Speciment Received", "Report",
			"Impression", "Keywords", "Reported By", "Date of Report",
		},
		Rows: [][]string{
			{"1", "Asha Rao", "34", "Female", "02-01-2025", "2025", "KB-1/25", "Dr. Mehta",
				"Two cores of renal tissue", "Twelve glomeruli", "IgA nephropathy",
				"IgA nephropathy, mesangial proliferation", "Dr. Iyer", "05-01-2025"},
			{"2", "Ravi Kumar", "61 years", "Male", "10-03-2025", "2025", "KB-2/25", "Dr. Mehta",
				"One core", "Eight glomeruli", "Diabetic nephropathy", "Diabetic nephropathy"},
			{"3", "No Biopsy", "8", "Male", "11-04-2024", "2024", "", "Dr. Shah"},
			{"4", "Meera Das", "45", "Female", "12-05-2024", "2024", "KB-4/24", "Dr. Shah",
				"", "", "", "IgA nephropathy, crescents"},
		},
	}
}

// WriteDataFile encodes t in the data-file layout (header row first) into
// dir and returns the path.
func WriteDataFile(tb testing.TB, dir string, t *domain.Table) string {
	tb.Helper()
	rows := make([][]string, 0, len(t.Rows)+1)
	rows = append(rows, t.Headers)
	rows = append(rows, t.Rows...)
	data, err := json.Marshal(rows)
	if err != nil {
		tb.Fatalf("encode data file: %v", err)
	}
	path := filepath.Join(dir, "biopsy_data.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write data file: %v", err)
	}
	return path
}

// WriteWorkbook saves an XLSX file named register.xlsx into dir with one
// sheet per entry of sheets, in sheet-name order, and returns the path.
func WriteWorkbook(tb testing.TB, dir string, sheets map[string][][]interface{}) string {
	tb.Helper()
	f := excelize.NewFile()
	defer f.Close()

	names := make([]string, 0, len(sheets))
	for name := range sheets {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				tb.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			tb.Fatalf("add sheet: %v", err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				tb.Fatalf("cell name: %v", err)
			}
			values := row
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				tb.Fatalf("write row: %v", err)
			}
		}
	}

	path := filepath.Join(dir, "register.xlsx")
	if err := f.SaveAs(path); err != nil {
		tb.Fatalf("save workbook: %v", err)
	}
	return path
}
