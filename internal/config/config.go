package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "BIOPSY"

// Config represents the complete application configuration
type Config struct {
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Render    RenderConfig    `yaml:"render" envconfig:"RENDER"`
	Batch     BatchConfig     `yaml:"batch" envconfig:"BATCH"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// DataConfig locates the case data file
type DataConfig struct {
	File string `yaml:"file" envconfig:"FILE"`
}

// OutputConfig contains output locations for generated artifacts
type OutputConfig struct {
	PDFDir      string `yaml:"pdf_dir" envconfig:"PDF_DIR"`
	YearDir     string `yaml:"year_dir" envconfig:"YEAR_DIR"`
	ReportsDir  string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	GroupByYear bool   `yaml:"group_by_year" envconfig:"GROUP_BY_YEAR"`
}

// RenderConfig contains document layout settings
type RenderConfig struct {
	Title            string `yaml:"title" envconfig:"TITLE"`
	Subtitle         string `yaml:"subtitle" envconfig:"SUBTITLE"`
	Compress         bool   `yaml:"compress" envconfig:"COMPRESS"`
	SpecimenMaxChars int    `yaml:"specimen_max_chars" envconfig:"SPECIMEN_MAX_CHARS"`
}

// BatchConfig contains bulk export settings
type BatchConfig struct {
	ProgressEvery int `yaml:"progress_every" envconfig:"PROGRESS_EVERY"`
	Workers       int `yaml:"workers" envconfig:"WORKERS"`
	QueueSize     int `yaml:"queue_size" envconfig:"QUEUE_SIZE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string          `yaml:"host" envconfig:"HOST"`
	Port            int             `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig selects OpenTelemetry exporters
type TelemetryConfig struct {
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load builds the configuration from defaults, the first config file found
// and the environment.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit YAML file. An empty path skips the file
// layer.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	paths, err := GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	cfg.resolvePaths(paths.BaseDir)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML document at filePath onto cfg. Keys absent
// from the file keep their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// resolvePaths makes every configured path absolute against base
func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{
		&c.Data.File,
		&c.Output.PDFDir,
		&c.Output.YearDir,
		&c.Output.ReportsDir,
		&c.Logging.FilePath,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// validate checks ranges and normalizes enumerations
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive when enabled")
	}
	if c.Batch.ProgressEvery < 0 {
		return fmt.Errorf("batch progress interval must not be negative")
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch workers must be positive")
	}
	if c.Batch.QueueSize < 0 {
		return fmt.Errorf("batch queue size must not be negative")
	}
	if c.Render.SpecimenMaxChars <= 0 {
		return fmt.Errorf("specimen cap must be positive")
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
		c.Logging.Output = strings.ToLower(c.Logging.Output)
	default:
		return fmt.Errorf("unsupported logging output: %q", c.Logging.Output)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging file path required for output %q", c.Logging.Output)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be within [0,1]")
	}

	return nil
}

// getConfigFilePath returns the first config file found, or ""
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	if base, err := GetPaths(); err == nil {
		locations = append(locations, filepath.Join(base.BaseDir, "config.yaml"))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Data: DataConfig{
			File: "biopsy_data.json",
		},
		Output: OutputConfig{
			PDFDir:     "reports/pdf",
			YearDir:    "reports/by_year",
			ReportsDir: "reports",
		},
		Render: RenderConfig{
			Title:            "KIDNEY BIOPSY PATHOLOGY REPORT",
			Subtitle:         "Department of Pathology - Medical Analysis Center",
			SpecimenMaxChars: 40,
		},
		Batch: BatchConfig{
			ProgressEvery: 200,
			Workers:       1,
			QueueSize:     8,
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   20,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/biopsy.log",
		},
		Telemetry: TelemetryConfig{
			EnableMetrics:  true,
			MetricExporter: "prometheus",
			TraceExporter:  "none",
			SampleRatio:    1.0,
		},
	}
}
