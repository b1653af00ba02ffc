package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"biopsycli/internal/stats"
)

// StatisticsHeaders is the header row of the statistics CSV.
var StatisticsHeaders = []string{"Category", "Value", "Count", "Percent"}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	baseDir string
}

// NewCSVWriter creates a writer that resolves relative paths against baseDir
func NewCSVWriter(baseDir string) *CSVWriter {
	return &CSVWriter{baseDir: baseDir}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteStatistics writes one row per category value of s
func (w *CSVWriter) WriteStatistics(filePath string, s stats.Snapshot) error {
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   StatisticsHeaders,
		Records:   StatisticsRows(s),
		BOMPrefix: true,
	})
}

// StatisticsRows flattens s into Category, Value, Count, Percent rows. The
// first row carries the total row count.
func StatisticsRows(s stats.Snapshot) [][]string {
	rows := [][]string{{"Total", "Reports", strconv.Itoa(s.TotalRows), "100.00"}}
	for _, c := range Categories(s) {
		for _, e := range c.Entries {
			rows = append(rows, []string{
				c.Name,
				e.Value,
				strconv.Itoa(e.Count),
				strconv.FormatFloat(e.Percent, 'f', 2, 64),
			})
		}
	}
	return rows
}

// Category is one named tally in export order.
type Category struct {
	Name    string
	Entries []stats.Entry
}

// Categories lists the tallies of s. Every value is included.
func Categories(s stats.Snapshot) []Category {
	return []Category{
		{Name: stats.CategorySex, Entries: s.Sex.Ranked()},
		{Name: stats.CategoryAgeGroup, Entries: s.AgeDistribution()},
		{Name: stats.CategoryYear, Entries: s.Years.Sorted()},
		{Name: stats.CategoryPhysician, Entries: s.Physicians.Ranked()},
		{Name: stats.CategoryKeyword, Entries: s.Keywords.Ranked()},
	}
}

func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.baseDir == "" {
		return filePath
	}
	return filepath.Join(w.baseDir, filePath)
}
