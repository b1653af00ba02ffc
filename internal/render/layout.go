package render

import (
	"strings"
	"time"

	"biopsycli/pkg/contracts/domain"
)

// LineKind tells the renderer how to draw a line.
type LineKind int

const (
	LineTitle LineKind = iota
	LineSubtitle
	LineField
	LineText
	LineTimestamp
)

// Line is one element of a section.
type Line struct {
	Kind  LineKind
	Label string
	Value string
}

// labelGap separates a label's colon from its value.
const labelGap = "     "

// Text returns the printed form of the line.
func (l Line) Text() string {
	if l.Kind == LineField {
		return l.Label + ":" + labelGap + l.Value
	}
	return l.Value
}

// Section is an optional heading followed by lines. Title block and footer
// sections have no heading.
type Section struct {
	Heading string
	Lines   []Line
}

// Section headings
const (
	HeadingPatient     = "PATIENT INFORMATION"
	HeadingCase        = "CASE DETAILS"
	HeadingMicroscopic = "MICROSCOPIC FINDINGS"
	HeadingImpression  = "PATHOLOGICAL IMPRESSION"
	HeadingNotes       = "CLINICAL NOTES"
	HeadingKeywords    = "KEYWORDS/DIAGNOSIS"
)

// TimestampLayout formats the generation line.
const TimestampLayout = "2006-01-02 15:04:05"

type labeled struct {
	field domain.Field
	label string
}

var patientFields = []labeled{
	{domain.FieldID, "Report ID"},
	{domain.FieldName, "Name"},
	{domain.FieldAge, "Age"},
	{domain.FieldSex, "Sex"},
	{domain.FieldReceiptDate, "Receipt Date"},
	{domain.FieldYear, "Year"},
}

var caseFields = []labeled{
	{domain.FieldCaseReference, "Case Reference"},
	{domain.FieldBiopsyNumber, "Biopsy Number"},
	{domain.FieldWard, "Ward"},
	{domain.FieldReferredBy, "Referred By"},
	{domain.FieldReferenceNumber, "Reference No."},
	{domain.FieldSpecimen, "Specimen"},
}

var freeTextSections = []labeled{
	{domain.FieldMicroscopicFindings, HeadingMicroscopic},
	{domain.FieldImpression, HeadingImpression},
	{domain.FieldClinicalNotes, HeadingNotes},
	{domain.FieldKeywords, HeadingKeywords},
}

var footerFields = []labeled{
	{domain.FieldReportedBy, "Reported By"},
	{domain.FieldReportDate, "Report Date"},
	{domain.FieldICDCode, "ICD Code"},
}

// Layout returns the sections of the report for n, in print order.
func (r *Renderer) Layout(n domain.Normalized) []Section {
	sections := []Section{
		{Lines: []Line{
			{Kind: LineTitle, Value: r.opts.Title},
			{Kind: LineSubtitle, Value: r.opts.Subtitle},
		}},
		{Heading: HeadingPatient, Lines: fieldLines(n, patientFields)},
	}

	details := fieldLines(n, caseFields)
	for i := range details {
		if details[i].Label == "Specimen" {
			details[i].Value = truncateRunes(details[i].Value, r.opts.SpecimenMaxChars)
		}
	}
	sections = append(sections, Section{Heading: HeadingCase, Lines: details})

	for _, ft := range freeTextSections {
		v := n.Get(ft.field)
		if strings.TrimSpace(v) == "" {
			continue
		}
		sections = append(sections, Section{
			Heading: ft.label,
			Lines:   []Line{{Kind: LineText, Value: v}},
		})
	}

	footer := fieldLines(n, footerFields)
	footer = append(footer, Line{
		Kind:  LineTimestamp,
		Value: "PDF Generated: " + r.now().Format(TimestampLayout),
	})
	sections = append(sections, Section{Lines: footer})

	return sections
}

// Preview renders the layout as plain text without the generation line.
func (r *Renderer) Preview(n domain.Normalized) string {
	var b strings.Builder
	for i, s := range r.Layout(n) {
		if i > 0 {
			b.WriteString("\n")
		}
		if s.Heading != "" {
			b.WriteString(s.Heading)
			b.WriteString("\n")
		}
		for _, l := range s.Lines {
			if l.Kind == LineTimestamp {
				continue
			}
			b.WriteString(l.Text())
			b.WriteString("\n")
		}
	}
	return b.String()
}

func fieldLines(n domain.Normalized, fs []labeled) []Line {
	lines := make([]Line, 0, len(fs))
	for _, f := range fs {
		lines = append(lines, Line{Kind: LineField, Label: f.label, Value: n.Get(f.field)})
	}
	return lines
}

// truncateRunes returns the first max runes of s.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func (r *Renderer) now() time.Time {
	if r.opts.Clock == nil {
		return time.Now()
	}
	return r.opts.Clock()
}
