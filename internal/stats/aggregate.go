package stats

import (
	"strconv"
	"strings"

	"biopsycli/internal/fields"
	"biopsycli/pkg/contracts/domain"
)

// AgeGroups lists the age buckets in display order.
var AgeGroups = []string{"0-9", "10-19", "20-29", "30-39", "40-49", "50-59", "60+"}

// Category names used by exporters.
const (
	CategorySex       = "Sex"
	CategoryAgeGroup  = "Age Group"
	CategoryYear      = "Year"
	CategoryPhysician = "Referring Physician"
	CategoryKeyword   = "Keyword"
)

// Snapshot is the result of one aggregation pass.
type Snapshot struct {
	TotalRows  int
	Sex        *Tally
	AgeGroups  *Tally
	Physicians *Tally
	Years      *Tally
	Keywords   *Tally
}

// Aggregate tallies rows in a single pass. Values are resolved through the
// field normalizer and trimmed; empty values are not counted.
func Aggregate(rows []domain.Record) Snapshot {
	s := Snapshot{
		TotalRows:  len(rows),
		Sex:        newTally(),
		AgeGroups:  newTally(),
		Physicians: newTally(),
		Years:      newTally(),
		Keywords:   newTally(),
	}

	for _, rec := range rows {
		if v := fields.Resolve(rec, domain.FieldSex); v != "" {
			s.Sex.add(v)
		}
		if age, ok := leadingNumber(fields.Resolve(rec, domain.FieldAge)); ok {
			s.AgeGroups.add(AgeGroup(age))
		}
		if v := fields.Resolve(rec, domain.FieldReferredBy); v != "" {
			s.Physicians.add(v)
		}
		if v := fields.Resolve(rec, domain.FieldYear); v != "" {
			s.Years.add(v)
		}
		for _, kw := range strings.Split(fields.Resolve(rec, domain.FieldKeywords), ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				s.Keywords.add(kw)
			}
		}
	}

	for _, t := range []*Tally{s.Sex, s.AgeGroups, s.Physicians, s.Years, s.Keywords} {
		t.total = s.TotalRows
	}
	return s
}

// AgeDistribution returns the age buckets in bucket order.
func (s Snapshot) AgeDistribution() []Entry {
	return s.AgeGroups.InOrder(AgeGroups)
}

// AgeGroup returns the bucket label for an age in years.
func AgeGroup(age int) string {
	switch {
	case age < 10:
		return "0-9"
	case age < 20:
		return "10-19"
	case age < 30:
		return "20-29"
	case age < 40:
		return "30-39"
	case age < 50:
		return "40-49"
	case age < 60:
		return "50-59"
	default:
		return "60+"
	}
}

// leadingNumber parses the first run of digits in s.
func leadingNumber(s string) (int, bool) {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(s) && isDigit(rune(s[end])) {
		end++
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
