package fields

import (
	"strings"

	"biopsycli/pkg/contracts/domain"
)

// candidates lists the accepted header spellings per canonical field, in
// priority order.
var candidates = map[domain.Field][]string{
	domain.FieldID:                  {"ID", "Report ID"},
	domain.FieldName:                {"Name", "Patient Name"},
	domain.FieldAge:                 {"Age"},
	domain.FieldSex:                 {"Sex", "Gender"},
	domain.FieldReceiptDate:         {"Receipt Date"},
	domain.FieldYear:                {"Year"},
	domain.FieldCaseReference:       {"CR No.", "Case Reference Number"},
	domain.FieldBiopsyNumber:        {"Biopsy No.", "Biopsy Number"},
	domain.FieldWard:                {"Ward No.", "Ward Number"},
	domain.FieldReferredBy:          {"Referred by", "Referred By"},
	domain.FieldReferenceNumber:     {"Reference No.", "Reference Number"},
	domain.FieldSpecimen:            {"Speciment Received", "Specimen Received"},
	domain.FieldMicroscopicFindings: {"Report", "Microscopic Findings"},
	domain.FieldImpression:          {"Impression", "Pathological Impression"},
	domain.FieldKeywords:            {"Keywords", "Diagnosis", "Keywords/Diagnosis"},
	domain.FieldClinicalNotes:       {"Note", "Clinical Notes"},
	domain.FieldReportedBy:          {"Reported By"},
	domain.FieldReportDate:          {"Date of Report", "Report Date"},
	domain.FieldICDCode:             {"ICD Code"},
}

// labels are the human-readable names used in previews and validation
// messages.
var labels = map[domain.Field]string{
	domain.FieldID:                  "Report ID",
	domain.FieldName:                "Patient Name",
	domain.FieldAge:                 "Age",
	domain.FieldSex:                 "Sex",
	domain.FieldReceiptDate:         "Receipt Date",
	domain.FieldYear:                "Year",
	domain.FieldCaseReference:       "Case Reference Number",
	domain.FieldBiopsyNumber:        "Biopsy Number",
	domain.FieldWard:                "Ward Number",
	domain.FieldReferredBy:          "Referred By",
	domain.FieldReferenceNumber:     "Reference Number",
	domain.FieldSpecimen:            "Specimen Received",
	domain.FieldMicroscopicFindings: "Microscopic Findings",
	domain.FieldImpression:          "Pathological Impression",
	domain.FieldKeywords:            "Diagnosis Keywords",
	domain.FieldClinicalNotes:       "Clinical Notes",
	domain.FieldReportedBy:          "Reported By",
	domain.FieldReportDate:          "Report Date",
	domain.FieldICDCode:             "ICD Code",
}

// Normalize resolves every canonical field of rec. The result always holds
// one entry per domain.CanonicalFields element.
func Normalize(rec domain.Record) domain.Normalized {
	n := make(domain.Normalized, len(domain.CanonicalFields))
	for _, f := range domain.CanonicalFields {
		n[f] = Resolve(rec, f)
	}
	return n
}

// Resolve returns the first non-empty value among the accepted header
// spellings of f, trimmed. It returns "" when no candidate carries a value.
func Resolve(rec domain.Record, f domain.Field) string {
	for _, header := range Candidates(f) {
		if v := strings.TrimSpace(rec[header]); v != "" {
			return v
		}
	}
	return ""
}

// Candidates returns the accepted header spellings of f in priority order.
// Unknown fields resolve only under their own name.
func Candidates(f domain.Field) []string {
	if c, ok := candidates[f]; ok {
		return c
	}
	return []string{string(f)}
}

var byHeader = func() map[string]domain.Field {
	m := make(map[string]domain.Field)
	for f, headers := range candidates {
		for _, h := range headers {
			m[h] = f
		}
	}
	return m
}()

// Canonical returns the canonical field a header spelling resolves to.
func Canonical(header string) (domain.Field, bool) {
	f, ok := byHeader[strings.TrimSpace(header)]
	return f, ok
}

// Label returns the display name of f.
func Label(f domain.Field) string {
	if l, ok := labels[f]; ok {
		return l
	}
	return string(f)
}
