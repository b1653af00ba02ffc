package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileValidator checks command inputs and output locations before work
// starts
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateOutputDirectory ensures dir exists or can be created and accepts
// new files
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks that path is an existing, readable regular file
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateDataFile checks that path is a readable JSON data file or XLSX
// register export, and not an Office lock file
func (v *FileValidator) ValidateDataFile(path string) error {
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Skipping temporary Excel file",
			slog.String("file", path))
		return fmt.Errorf("file %s is a temporary Excel file", path)
	}
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	return v.requireExt(path, ".json", ".xlsx")
}

// CountDocuments counts rendered documents directly inside dir
func (v *FileValidator) CountDocuments(dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	count := 0
	for _, match := range matches {
		if info, err := os.Stat(match); err == nil && !info.IsDir() {
			count++
		}
	}

	v.logger.Debug("Documents counted",
		slog.String("directory", dir),
		slog.Int("count", count))
	return count, nil
}

func (v *FileValidator) requireExt(path string, allowed ...string) error {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range allowed {
		if ext == want {
			return nil
		}
	}
	v.logger.Error("Unexpected file type",
		slog.String("file", path),
		slog.String("extension", ext),
		slog.String("expected", strings.Join(allowed, ", ")))
	return fmt.Errorf("file %s is not a %s file (extension: %s)", path, strings.Join(allowed, " or "), ext)
}
