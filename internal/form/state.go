package form

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"biopsycli/internal/fields"
	"biopsycli/pkg/contracts/domain"
)

// State is the editable value of every canonical field of one case.
type State struct {
	ID                  string `field:"ID" validate:"nonblank"`
	Name                string `field:"Name" validate:"nonblank"`
	Age                 string `field:"Age" validate:"nonblank"`
	Sex                 string `field:"Sex" validate:"nonblank"`
	ReceiptDate         string `field:"Receipt Date" validate:"nonblank"`
	Year                string `field:"Year"`
	CaseReference       string `field:"CR No."`
	BiopsyNumber        string `field:"Biopsy No."`
	Ward                string `field:"Ward No."`
	ReferredBy          string `field:"Referred by"`
	ReferenceNumber     string `field:"Reference No."`
	Specimen            string `field:"Speciment Received"`
	MicroscopicFindings string `field:"Report"`
	Impression          string `field:"Impression"`
	Keywords            string `field:"Keywords"`
	ClinicalNotes       string `field:"Note"`
	ReportedBy          string `field:"Reported By"`
	ReportDate          string `field:"Date of Report"`
	ICDCode             string `field:"ICD Code"`
}

// MissingFieldsError lists required fields that are empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("please fill in: %s", strings.Join(e.Fields, ", "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("nonblank", isNonBlank); err != nil {
		panic(fmt.Sprintf("register nonblank validation: %v", err))
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("field")
	})
	return v
}

// isNonBlank rejects strings that are empty after trimming.
func isNonBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// FromRecord returns a State populated from rec.
func FromRecord(rec domain.Record) *State {
	s := &State{}
	s.Populate(rec)
	return s
}

// Populate replaces every field with the normalized value from rec.
func (s *State) Populate(rec domain.Record) {
	n := fields.Normalize(rec)
	for f, p := range s.bindings() {
		*p = n.Get(f)
	}
}

// Clear empties every field.
func (s *State) Clear() {
	*s = State{}
}

// Set updates one field. Unknown fields are ignored.
func (s *State) Set(f domain.Field, value string) {
	if p, ok := s.bindings()[f]; ok {
		*p = value
	}
}

// Normalized returns the current values keyed by canonical field, trimmed.
func (s *State) Normalized() domain.Normalized {
	n := make(domain.Normalized, len(domain.CanonicalFields))
	for f, p := range s.bindings() {
		n[f] = strings.TrimSpace(*p)
	}
	return n
}

// Validate reports the required fields that are blank, in field order.
func (s *State) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	missing := &MissingFieldsError{}
	for _, fe := range verrs {
		missing.Fields = append(missing.Fields, fe.Field())
	}
	return missing
}

func (s *State) bindings() map[domain.Field]*string {
	return map[domain.Field]*string{
		domain.FieldID:                  &s.ID,
		domain.FieldName:                &s.Name,
		domain.FieldAge:                 &s.Age,
		domain.FieldSex:                 &s.Sex,
		domain.FieldReceiptDate:         &s.ReceiptDate,
		domain.FieldYear:                &s.Year,
		domain.FieldCaseReference:       &s.CaseReference,
		domain.FieldBiopsyNumber:        &s.BiopsyNumber,
		domain.FieldWard:                &s.Ward,
		domain.FieldReferredBy:          &s.ReferredBy,
		domain.FieldReferenceNumber:     &s.ReferenceNumber,
		domain.FieldSpecimen:            &s.Specimen,
		domain.FieldMicroscopicFindings: &s.MicroscopicFindings,
		domain.FieldImpression:          &s.Impression,
		domain.FieldKeywords:            &s.Keywords,
		domain.FieldClinicalNotes:       &s.ClinicalNotes,
		domain.FieldReportedBy:          &s.ReportedBy,
		domain.FieldReportDate:          &s.ReportDate,
		domain.FieldICDCode:             &s.ICDCode,
	}
}
