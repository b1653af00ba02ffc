// Package fields resolves the alternate header spellings found in biopsy
// spreadsheet exports into one canonical key per case field.
//
// Each canonical field carries an ordered list of accepted source headers.
// Resolution takes the first candidate whose trimmed value is non-empty and
// falls back to the empty string, so a normalized record always contains
// every canonical field:
//
//	n := fields.Normalize(rec)
//	name := n.Get(domain.FieldName)
//
// The candidate table is fixed at compile time and normalization performs no
// I/O.
package fields
