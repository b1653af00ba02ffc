// Package render lays out one normalized biopsy record as a single-page
// pathology report and serializes it to PDF.
//
// Layout produces the toolkit-independent line sequence; Render draws the
// same sequence with github.com/go-pdf/fpdf. Label/value pairs are written
// as one text line, "Label:" followed by five spaces and the value.
//
// Output is deterministic for a fixed clock: the document dates come from
// Options.Clock and the catalog is written in sorted order.
package render
