package records

import (
	"log/slog"
	"strings"

	"biopsycli/internal/fields"
	"biopsycli/pkg/contracts/domain"
)

// Store is the in-memory record set built from one data file. It is
// read-only once built.
type Store struct {
	headers []string
	rows    []domain.Record
	byID    map[string]domain.Record
	ids     []string
	loadErr error
}

// Load builds a Store from the data file at path, JSON or .xlsx. Any read
// or decode failure is logged and yields an empty Store carrying the error.
func Load(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	t, err := LoadTable(path, logger)
	if err != nil {
		logger.Warn("biopsy data unavailable",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return &Store{byID: map[string]domain.Record{}, loadErr: err}
	}

	s := FromTable(t)
	logger.Info("biopsy data loaded",
		slog.String("path", path),
		slog.Int("rows", len(s.rows)),
		slog.Int("records", s.Len()))
	return s
}

// FromTable builds a Store from a decoded table. Short rows are padded with
// empty values and surplus cells are ignored.
func FromTable(t *domain.Table) *Store {
	s := &Store{byID: map[string]domain.Record{}}
	if t == nil {
		return s
	}

	s.headers = append([]string(nil), t.Headers...)
	s.rows = make([]domain.Record, 0, len(t.Rows))

	for _, row := range t.Rows {
		rec := make(domain.Record, len(s.headers))
		for i, h := range s.headers {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		s.rows = append(s.rows, rec)

		key := fields.Resolve(rec, domain.FieldBiopsyNumber)
		if key == "" {
			continue
		}
		if _, seen := s.byID[key]; !seen {
			s.ids = append(s.ids, key)
		}
		s.byID[key] = rec
	}
	return s
}

// LoadErr returns why the store is empty, or nil when the file loaded.
func (s *Store) LoadErr() error { return s.loadErr }

// Len returns the number of keyed records.
func (s *Store) Len() int { return len(s.byID) }

// Get returns the record keyed by biopsy number id.
func (s *Store) Get(id string) (domain.Record, bool) {
	rec, ok := s.byID[id]
	return rec, ok
}

// IDs returns the biopsy numbers in first-seen order.
func (s *Store) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Records returns the keyed records in IDs order.
func (s *Store) Records() []domain.Record {
	out := make([]domain.Record, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.byID[id])
	}
	return out
}

// Rows returns every data row, keyed or not, in file order.
func (s *Store) Rows() []domain.Record {
	return append([]domain.Record(nil), s.rows...)
}

// Headers returns the header row of the source file.
func (s *Store) Headers() []string {
	return append([]string(nil), s.headers...)
}

// Search returns browse summaries of keyed records whose identifier, name,
// age, sex, receipt date or biopsy number contains query, ignoring case.
// An empty query matches everything.
func (s *Store) Search(query string) []domain.RecordSummary {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]domain.RecordSummary, 0)
	for _, id := range s.ids {
		sum := Summarize(id, s.byID[id])
		if q == "" || sum.Matches(q) {
			out = append(out, sum)
		}
	}
	return out
}

// Summarize builds the browse row for rec stored under biopsyNo.
func Summarize(biopsyNo string, rec domain.Record) domain.RecordSummary {
	return domain.RecordSummary{
		ID:          fields.Resolve(rec, domain.FieldID),
		BiopsyNo:    biopsyNo,
		Name:        fields.Resolve(rec, domain.FieldName),
		Age:         fields.Resolve(rec, domain.FieldAge),
		Sex:         fields.Resolve(rec, domain.FieldSex),
		ReceiptDate: fields.Resolve(rec, domain.FieldReceiptDate),
	}
}
