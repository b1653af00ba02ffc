package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biopsycli/pkg/contracts/domain"
)

func TestPopulate_UsesNormalizer(t *testing.T) {
	s := FromRecord(domain.Record{
		"Report ID":    "2001",
		"Patient Name": "Test Patient",
		"Age":          " 35 years",
		"Gender":       "Male",
		"Receipt Date": "03-02-2026",
		"Biopsy No.":   "KB-001/26",
	})

	assert.Equal(t, "2001", s.ID)
	assert.Equal(t, "Test Patient", s.Name)
	assert.Equal(t, "35 years", s.Age)
	assert.Equal(t, "Male", s.Sex)
	assert.Equal(t, "KB-001/26", s.BiopsyNumber)
	assert.NoError(t, s.Validate())
}

func TestPopulate_ReplacesPreviousValues(t *testing.T) {
	s := FromRecord(domain.Record{"ID": "1", "Note": "old note"})

	s.Populate(domain.Record{"ID": "2"})

	assert.Equal(t, "2", s.ID)
	assert.Empty(t, s.ClinicalNotes)
}

func TestValidate_ListsMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  []string
	}{
		{
			name:  "empty form",
			state: State{},
			want:  []string{"ID", "Name", "Age", "Sex", "Receipt Date"},
		},
		{
			name:  "blank values count as missing",
			state: State{ID: "1", Name: "  ", Age: "40", Sex: "Female"},
			want:  []string{"Name", "Receipt Date"},
		},
		{
			name:  "optional fields are not required",
			state: State{ID: "1", Name: "A", Age: "4", Sex: "Male", ReceiptDate: "01-01-2025"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			var missing *MissingFieldsError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.want, missing.Fields)
		})
	}
}

func TestMissingFieldsError_Message(t *testing.T) {
	err := &MissingFieldsError{Fields: []string{"Name", "Age"}}
	assert.Equal(t, "please fill in: Name, Age", err.Error())
}

func TestNormalized_AllFieldsTrimmed(t *testing.T) {
	s := &State{}
	s.Set(domain.FieldSpecimen, "  Two cores ")
	s.Set(domain.Field("Addendum"), "ignored")

	n := s.Normalized()

	assert.Len(t, n, len(domain.CanonicalFields))
	assert.Equal(t, "Two cores", n.Get(domain.FieldSpecimen))
}

func TestClear(t *testing.T) {
	s := FromRecord(domain.Record{"ID": "9", "Name": "X"})

	s.Clear()

	assert.Equal(t, State{}, *s)
}

func TestNewValidator_RegistersNonBlank(t *testing.T) {
	var v interface{ Struct(interface{}) error }
	require.NotPanics(t, func() { v = newValidator() })

	type sample struct {
		Value string `validate:"nonblank" field:"Value"`
	}
	assert.Error(t, v.Struct(sample{Value: " \t"}))
	assert.NoError(t, v.Struct(sample{Value: "x"}))
}
