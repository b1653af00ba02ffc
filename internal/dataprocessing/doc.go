// Package dataprocessing reads spreadsheet exports of the case register
// into the table layout shared with the JSON data file. The record store
// uses it when the configured data file is a .xlsx workbook.
//
// The sheet holding the register is found by its header row: the first row
// within the top ten that names both a biopsy number column and a patient
// name column. Rows above the header and rows with no value are dropped.
package dataprocessing
