// Package stats aggregates the raw data rows into categorical tallies and
// renders them as a self-contained HTML dashboard.
//
// Every data row counts toward the percentage base, including rows the
// record store drops for lacking a biopsy number.
package stats
