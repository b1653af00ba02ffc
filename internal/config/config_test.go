package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "biopsy_data.json", cfg.Data.File)
	assert.Equal(t, 40, cfg.Render.SpecimenMaxChars)
	assert.Equal(t, 200, cfg.Batch.ProgressEvery)
	assert.Equal(t, 1, cfg.Batch.Workers)
	assert.Equal(t, 8, cfg.Batch.QueueSize)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.False(t, cfg.Output.GroupByYear)
	require.NoError(t, cfg.validate())
}

func TestLoadFrom(t *testing.T) {
	base := t.TempDir()
	t.Setenv(BaseDirEnv, base)

	tests := []struct {
		name        string
		env         map[string]string
		yaml        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults resolve against base dir",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, filepath.Join(base, "biopsy_data.json"), cfg.Data.File)
				assert.Equal(t, filepath.Join(base, "reports", "pdf"), cfg.Output.PDFDir)
			},
		},
		{
			name: "file overrides defaults",
			yaml: "server:\n  port: 9191\n  read_timeout: 5s\noutput:\n  group_by_year: true\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9191, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.True(t, cfg.Output.GroupByYear)
				assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
			},
		},
		{
			name: "environment overrides file",
			yaml: "server:\n  port: 9191\n",
			env: map[string]string{
				"BIOPSY_SERVER_PORT": "9292",
				"BIOPSY_DATA_FILE":   "/srv/cases.json",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9292, cfg.Server.Port)
				assert.Equal(t, "/srv/cases.json", cfg.Data.File)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"BIOPSY_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "unknown logging output",
			env:     map[string]string{"BIOPSY_LOGGING_OUTPUT": "syslog"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "server: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var file string
			if tt.yaml != "" {
				file = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(file, []byte(tt.yaml), 0644))
			}

			cfg, err := LoadFrom(file)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	t.Setenv(BaseDirEnv, t.TempDir())
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero read timeout", mutate: func(c *Config) { c.Server.ReadTimeout = 0 }, wantErr: true},
		{name: "negative progress", mutate: func(c *Config) { c.Batch.ProgressEvery = -1 }, wantErr: true},
		{name: "no export workers", mutate: func(c *Config) { c.Batch.Workers = 0 }, wantErr: true},
		{name: "negative queue size", mutate: func(c *Config) { c.Batch.QueueSize = -1 }, wantErr: true},
		{name: "zero specimen cap", mutate: func(c *Config) { c.Render.SpecimenMaxChars = 0 }, wantErr: true},
		{name: "file output without path", mutate: func(c *Config) {
			c.Logging.Output = "file"
			c.Logging.FilePath = ""
		}, wantErr: true},
		{name: "output is case-insensitive", mutate: func(c *Config) { c.Logging.Output = "BOTH" }},
		{name: "sample ratio out of range", mutate: func(c *Config) { c.Telemetry.SampleRatio = 2 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
