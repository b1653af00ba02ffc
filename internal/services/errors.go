package services

import "errors"

var (
	// ErrRecordNotFound is returned for an unknown biopsy number.
	ErrRecordNotFound = errors.New("record not found")

	// ErrNoData is returned when the data file could not be loaded.
	ErrNoData = errors.New("no biopsy data loaded")
)
