// Package batch renders many records into one output directory.
//
// A run is sequential. A record that fails to render or write is counted
// and logged and the run moves on; Run itself never fails. With year
// grouping enabled every written document is also copied into a per-year
// folder.
package batch
