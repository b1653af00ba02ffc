package domain

import "strings"

// Table is the decoded input data file: a header row followed by value rows.
// Rows may be shorter than the header row.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Record maps a source header spelling to the cell value of one data row.
type Record map[string]string

// Field is the canonical name of a case field, independent of which header
// spelling supplied it.
type Field string

// Canonical fields of a biopsy case record
const (
	FieldID                  Field = "ID"
	FieldName                Field = "Name"
	FieldAge                 Field = "Age"
	FieldSex                 Field = "Sex"
	FieldReceiptDate         Field = "Receipt Date"
	FieldYear                Field = "Year"
	FieldCaseReference       Field = "CR No."
	FieldBiopsyNumber        Field = "Biopsy No."
	FieldWard                Field = "Ward No."
	FieldReferredBy          Field = "Referred by"
	FieldReferenceNumber     Field = "Reference No."
	FieldSpecimen            Field = "Speciment Received"
	FieldMicroscopicFindings Field = "Report"
	FieldImpression          Field = "Impression"
	FieldKeywords            Field = "Keywords"
	FieldClinicalNotes       Field = "Note"
	FieldReportedBy          Field = "Reported By"
	FieldReportDate          Field = "Date of Report"
	FieldICDCode             Field = "ICD Code"
)

// CanonicalFields lists every canonical field in display order.
var CanonicalFields = []Field{
	FieldID,
	FieldName,
	FieldAge,
	FieldSex,
	FieldReceiptDate,
	FieldYear,
	FieldCaseReference,
	FieldBiopsyNumber,
	FieldWard,
	FieldReferredBy,
	FieldReferenceNumber,
	FieldSpecimen,
	FieldMicroscopicFindings,
	FieldImpression,
	FieldKeywords,
	FieldClinicalNotes,
	FieldReportedBy,
	FieldReportDate,
	FieldICDCode,
}

// Normalized holds one value per canonical field. Absent fields are stored
// as the empty string, never omitted.
type Normalized map[Field]string

// Get returns the value for f, or "" when the field is unset.
func (n Normalized) Get(f Field) string {
	return n[f]
}

// RecordSummary is the row shape of the record browser.
type RecordSummary struct {
	ID          string `json:"id"`
	BiopsyNo    string `json:"biopsy_no"`
	Name        string `json:"name"`
	Age         string `json:"age"`
	Sex         string `json:"sex"`
	ReceiptDate string `json:"receipt_date"`
}

// Matches reports whether any summary column contains the lower-case query.
func (s RecordSummary) Matches(lowerQuery string) bool {
	for _, v := range []string{s.ID, s.Name, s.Age, s.Sex, s.ReceiptDate, s.BiopsyNo} {
		if strings.Contains(strings.ToLower(v), lowerQuery) {
			return true
		}
	}
	return false
}
