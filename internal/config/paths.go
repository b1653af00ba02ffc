package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// BaseDirEnv overrides the executable directory as the path base.
const BaseDirEnv = EnvPrefix + "_BASE_DIR"

// Paths are the resolved locations used when nothing else is configured.
type Paths struct {
	BaseDir    string
	DataFile   string
	ReportsDir string
	PDFDir     string
	YearDir    string
	LogsDir    string
}

// GetPaths resolves the default layout under the base directory:
//
//	<base>/
//	  biopsy_data.json
//	  reports/
//	    pdf/
//	    by_year/Year_2025/...
//	    biopsy_statistics_report.html
//	  logs/
func GetPaths() (*Paths, error) {
	base := os.Getenv(BaseDirEnv)
	if base == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}
		exe, err = filepath.EvalSymlinks(exe)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
		}
		base = filepath.Dir(exe)
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	reports := filepath.Join(base, "reports")
	return &Paths{
		BaseDir:    base,
		DataFile:   filepath.Join(base, "biopsy_data.json"),
		ReportsDir: reports,
		PDFDir:     filepath.Join(reports, "pdf"),
		YearDir:    filepath.Join(reports, "by_year"),
		LogsDir:    filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirectories creates the output directories named by cfg
func EnsureDirectories(cfg *Config) error {
	dirs := []string{cfg.Output.ReportsDir, cfg.Output.PDFDir}
	if cfg.Output.GroupByYear {
		dirs = append(dirs, cfg.Output.YearDir)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// LogPathResolution logs the effective file locations
func (c *Config) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.String("data_file", c.Data.File),
		slog.Group("output",
			slog.String("pdf", c.Output.PDFDir),
			slog.String("by_year", c.Output.YearDir),
			slog.String("reports", c.Output.ReportsDir),
			slog.Bool("group_by_year", c.Output.GroupByYear),
		),
	)
}
