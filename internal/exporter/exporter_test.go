package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"biopsycli/internal/records"
	"biopsycli/internal/shared/testutil"
	"biopsycli/internal/stats"
)

func sampleSnapshot() stats.Snapshot {
	return stats.Aggregate(records.FromTable(testutil.SampleTable()).Rows())
}

func readCSV(t *testing.T, path string) (bool, [][]string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	hasBOM := bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)
	return hasBOM, rows
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		options  WriteOptions
		wantBOM  bool
		wantRows int
	}{
		{
			name:     "headers and records with BOM",
			options:  WriteOptions{Headers: []string{"A", "B"}, Records: [][]string{{"1", "2"}, {"3", "4"}}, BOMPrefix: true},
			wantBOM:  true,
			wantRows: 3,
		},
		{
			name:     "no BOM",
			options:  WriteOptions{Headers: []string{"A"}, Records: [][]string{{"x"}}},
			wantRows: 2,
		},
		{
			name:     "empty records",
			options:  WriteOptions{Headers: []string{"A"}, BOMPrefix: true},
			wantBOM:  true,
			wantRows: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			w := NewCSVWriter(dir)

			require.NoError(t, w.WriteCSV("nested/out.csv", tt.options))

			bom, rows := readCSV(t, filepath.Join(dir, "nested", "out.csv"))
			assert.Equal(t, tt.wantBOM, bom)
			assert.Len(t, rows, tt.wantRows)
		})
	}
}

func TestCSVWriter_Append(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	require.NoError(t, w.WriteCSV("log.csv", WriteOptions{Headers: []string{"A"}, Records: [][]string{{"1"}}, BOMPrefix: true}))
	require.NoError(t, w.WriteCSV("log.csv", WriteOptions{Headers: []string{"A"}, Records: [][]string{{"2"}}, Append: true, BOMPrefix: true}))

	_, rows := readCSV(t, filepath.Join(dir, "log.csv"))
	assert.Equal(t, [][]string{{"A"}, {"1"}, {"2"}}, rows)
}

func TestCSVWriter_AbsolutePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abs.csv")
	w := NewCSVWriter("/nonexistent-base")

	require.NoError(t, w.WriteCSV(path, WriteOptions{Headers: []string{"A"}}))
	assert.FileExists(t, path)
}

func TestCSVWriter_WriteStatistics(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	require.NoError(t, w.WriteStatistics("statistics.csv", sampleSnapshot()))

	bom, rows := readCSV(t, filepath.Join(dir, "statistics.csv"))
	assert.True(t, bom)
	require.NotEmpty(t, rows)
	assert.Equal(t, StatisticsHeaders, rows[0])
	assert.Equal(t, []string{"Total", "Reports", "4", "100.00"}, rows[1])
	assert.Contains(t, rows, []string{stats.CategorySex, "Female", "2", "50.00"})
	assert.Contains(t, rows, []string{stats.CategoryAgeGroup, "60+", "1", "25.00"})
	assert.Contains(t, rows, []string{stats.CategoryKeyword, "IgA nephropathy", "2", "50.00"})
}

func TestStatisticsRows_Empty(t *testing.T) {
	rows := StatisticsRows(stats.Aggregate(nil))
	assert.Equal(t, [][]string{{"Total", "Reports", "0", "100.00"}}, rows)
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "statistics.xlsx")

	require.NoError(t, WriteWorkbook(path, sampleSnapshot()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		SummarySheet,
		stats.CategorySex,
		stats.CategoryAgeGroup,
		stats.CategoryYear,
		stats.CategoryPhysician,
		stats.CategoryKeyword,
	}, f.GetSheetList())

	total, err := f.GetCellValue(SummarySheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "4", total)

	years, err := f.GetRows(stats.CategoryYear)
	require.NoError(t, err)
	require.Len(t, years, 3)
	assert.Equal(t, "2024", years[1][0])
	assert.Equal(t, "2", years[1][1])
}
