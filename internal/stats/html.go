package stats

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"math"
	"os"
	"path/filepath"
	"time"

	"biopsycli/internal/fields"
	"biopsycli/pkg/contracts/domain"
)

//go:embed dashboard.html.tmpl
var dashboardSource string

var dashboardTemplate = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"barWidth": barWidth,
}).Parse(dashboardSource))

// HTMLOptions controls the dashboard. Zero limits mean unlimited.
type HTMLOptions struct {
	Title         string
	Headers       []string
	TopPhysicians int
	TopKeywords   int
	Clock         func() time.Time
}

// DefaultHTMLOptions returns the standard dashboard limits.
func DefaultHTMLOptions() HTMLOptions {
	return HTMLOptions{
		Title:         "Pathology Reports Dashboard",
		TopPhysicians: 15,
		TopKeywords:   20,
	}
}

type section struct {
	ID      string
	Title   string
	Column  string
	Bars    bool
	Entries []Entry
}

type fieldInfo struct {
	Name        string
	Description string
}

type dashboardData struct {
	Title     string
	Generated string
	Snapshot  Snapshot
	Sections  []section
	Fields    []fieldInfo
}

// RenderHTML renders s as one HTML document with inline styles and no
// external resources.
func RenderHTML(s Snapshot, opts HTMLOptions) ([]byte, error) {
	if opts.Title == "" {
		opts.Title = DefaultHTMLOptions().Title
	}
	now := time.Now()
	if opts.Clock != nil {
		now = opts.Clock()
	}

	data := dashboardData{
		Title:     opts.Title,
		Generated: now.Format("2006-01-02 15:04:05"),
		Snapshot:  s,
		Sections: []section{
			{ID: "sex", Title: "Gender Distribution", Column: "Gender", Bars: true, Entries: s.Sex.Ranked()},
			{ID: "age", Title: "Age Group Distribution", Column: "Age Group", Bars: true, Entries: withSuffix(s.AgeGroups.Ranked(), " years")},
			{ID: "years", Title: "Year-wise Distribution", Column: "Year", Bars: true, Entries: s.Years.Ranked()},
			{ID: "physicians", Title: "Top Referring Physicians", Column: "Physician Name", Bars: true, Entries: s.Physicians.Top(opts.TopPhysicians)},
			{ID: "keywords", Title: "Top Clinical Keywords/Diagnoses", Column: "Keyword", Bars: true, Entries: s.Keywords.Top(opts.TopKeywords)},
		},
		Fields: describeFields(opts.Headers),
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render dashboard: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHTML renders s and writes it to path, creating parent directories.
func WriteHTML(path string, s Snapshot, opts HTMLOptions) error {
	data, err := RenderHTML(s, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// barWidth scales a percentage so small shares stay visible, capped at 100.
func barWidth(pct float64) string {
	return fmt.Sprintf("%.1f", math.Min(pct*3, 100))
}

func withSuffix(entries []Entry, suffix string) []Entry {
	for i := range entries {
		entries[i].Value += suffix
	}
	return entries
}

var fieldDescriptions = map[domain.Field]string{
	domain.FieldID:                  "Unique identifier for each report",
	domain.FieldReceiptDate:         "Date when the biopsy sample was received",
	domain.FieldYear:                "Year of receipt",
	domain.FieldCaseReference:       "Case reference number",
	domain.FieldBiopsyNumber:        "Biopsy sample number",
	domain.FieldWard:                "Ward the patient was referred from",
	domain.FieldName:                "Patient name",
	domain.FieldAge:                 "Patient age in years",
	domain.FieldReferredBy:          "Name of the referring physician",
	domain.FieldSex:                 "Patient sex",
	domain.FieldReferenceNumber:     "Clinical reference number",
	domain.FieldSpecimen:            "Type of specimen received",
	domain.FieldMicroscopicFindings: "Detailed microscopic findings",
	domain.FieldImpression:          "Pathological impression and diagnosis",
	domain.FieldClinicalNotes:       "Additional clinical notes",
	domain.FieldReportedBy:          "Name of the reporting pathologist",
	domain.FieldReportDate:          "Date when the report was finalized",
	domain.FieldKeywords:            "Associated diagnostic keywords",
	domain.FieldICDCode:             "International Classification of Diseases code",
}

const defaultFieldDescription = "Clinical data field"

func describeFields(headers []string) []fieldInfo {
	out := make([]fieldInfo, 0, len(headers))
	for _, h := range headers {
		desc := defaultFieldDescription
		if f, ok := fields.Canonical(h); ok {
			if d, ok := fieldDescriptions[f]; ok {
				desc = d
			}
		}
		out = append(out, fieldInfo{Name: h, Description: desc})
	}
	return out
}
