package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Manager performs the filesystem writes of the toolkit
type Manager struct {
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger.With(slog.String("component", "files"))}
}

// FileExists checks if a regular file exists at path
func (m *Manager) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureDirectory creates a directory with all parent directories
func (m *Manager) EnsureDirectory(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// WriteFile writes data to path, replacing any existing file
func (m *Manager) WriteFile(path string, data []byte) error {
	m.logger.Debug("Writing file",
		slog.String("path", path),
		slog.Int("size_bytes", len(data)))

	if err := m.EnsureDirectory(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// CopyFile copies src to dst, creating the destination directory
func (m *Manager) CopyFile(src, dst string) error {
	m.logger.Debug("Copying file",
		slog.String("src", src),
		slog.String("dst", dst))

	if err := m.EnsureDirectory(filepath.Dir(dst)); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}
	return dstFile.Sync()
}

// ListDocuments returns the names of rendered documents in dir, sorted
func (m *Manager) ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), DocumentExt) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
