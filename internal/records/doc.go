// Package records loads the biopsy data file and holds its rows in memory.
//
// The data file is a JSON array whose first element is the header row and
// whose remaining elements are value rows. Load never fails: a missing,
// empty or malformed file yields an empty Store whose LoadErr explains why.
// Keyed lookups use the resolved biopsy number; rows without one stay
// available through Rows for aggregate statistics.
package records
