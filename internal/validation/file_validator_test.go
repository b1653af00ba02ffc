package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biopsycli/internal/shared/testutil"
)

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name:      "existing directory",
			setupFunc: func(t *testing.T) string { return t.TempDir() },
		},
		{
			name: "created when missing",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "reports", "pdf")
			},
		},
		{
			name: "path is a file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "taken")
				require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
				return file
			},
			wantErr:       true,
			errorContains: "failed to create output directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			v := NewFileValidator(logger)
			dir := tt.setupFunc(t)

			err := v.ValidateOutputDirectory(dir)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.DirExists(t, dir)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries, "write test file must be removed")
		})
	}
}

func TestFileValidator_ValidateDataFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "biopsy_data.json")
	bookPath := filepath.Join(dir, "register.xlsx")
	lockPath := filepath.Join(dir, "~$register.xlsx")
	txtPath := filepath.Join(dir, "biopsy_data.txt")
	for _, p := range []string{jsonPath, bookPath, lockPath, txtPath} {
		require.NoError(t, os.WriteFile(p, []byte("[]"), 0644))
	}

	tests := []struct {
		name          string
		path          string
		errorContains string
	}{
		{name: "json file", path: jsonPath},
		{name: "workbook", path: bookPath},
		{name: "office lock file", path: lockPath, errorContains: "temporary Excel file"},
		{name: "wrong extension", path: txtPath, errorContains: "not a .json or .xlsx file"},
		{name: "missing", path: filepath.Join(dir, "nope.json"), errorContains: "does not exist"},
		{name: "directory", path: dir, errorContains: "is a directory"},
	}

	v := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateDataFile(tt.path)
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestFileValidator_CountDocuments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1_A.pdf"), []byte("%PDF"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2_B.pdf"), []byte("%PDF"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "3_C.pdf"), 0755))

	count, err := NewFileValidator(nil).CountDocuments(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
