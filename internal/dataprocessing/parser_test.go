package dataprocessing

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "biopsycli/internal/errors"
	"biopsycli/internal/shared/testutil"
)

func writeWorkbook(t *testing.T, sheets map[string][][]interface{}) string {
	t.Helper()
	return testutil.WriteWorkbook(t, t.TempDir(), sheets)
}

func TestParseWorkbook(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"Register": {
			{"Kidney biopsy register 2026"},
			{"ID", "Name", "Age", "Sex", "Receipt Date", " Biopsy No. "},
			{2001, " Test Patient ", "35 years", "Male", "03-02-2026", "KB-001/26"},
			{"", "", "", "", "", ""},
			{2002, "Short Row"},
		},
	})
	logger, logs := testutil.NewTestLogger(t)

	table, err := ParseWorkbook(path, logger)
	require.NoError(t, err)

	assert.Equal(t, []string{"ID", "Name", "Age", "Sex", "Receipt Date", "Biopsy No."}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2001", "Test Patient", "35 years", "Male", "03-02-2026", "KB-001/26"}, table.Rows[0])
	assert.Equal(t, []string{"2002", "Short Row"}, table.Rows[1])
	assert.True(t, logs.ContainsMessage("Found register sheet"))
}

func TestParseWorkbook_AlternateHeaders(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"Data": {
			{"Report ID", "Patient Name", "Biopsy Number"},
			{"1", "Asha Rao", "KB-1/25"},
		},
	})

	table, err := ParseWorkbook(path, nil)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}

func TestParseWorkbook_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := ParseWorkbook(filepath.Join(t.TempDir(), "nope.xlsx"), nil)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrTypeStorage, appErr.Type)
	})

	t.Run("no register sheet", func(t *testing.T) {
		path := writeWorkbook(t, map[string][][]interface{}{
			"Other": {{"Date", "Value"}, {"2025-01-01", 3}},
		})
		_, err := ParseWorkbook(path, nil)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrTypeParsing, appErr.Type)
	})

	t.Run("header only", func(t *testing.T) {
		path := writeWorkbook(t, map[string][][]interface{}{
			"Register": {{"Name", "Biopsy No."}},
		})
		_, err := ParseWorkbook(path, nil)
		require.Error(t, err)
	})
}
