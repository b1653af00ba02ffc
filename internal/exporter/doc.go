// Package exporter writes aggregate statistics in spreadsheet-friendly
// formats.
//
// CSVWriter produces UTF-8 CSV with a byte order mark so Excel detects the
// encoding. WriteWorkbook produces an XLSX file with a summary sheet and one
// sheet per category.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths.ReportsDir)
//	err := w.WriteStatistics("statistics.csv", snapshot)
//
//	err = exporter.WriteWorkbook(filepath.Join(paths.ReportsDir, "statistics.xlsx"), snapshot)
package exporter
