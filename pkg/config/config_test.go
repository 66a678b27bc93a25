package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "becas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.Extraction.CanonicalDefaults)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
input_dir: textos
workers: 2
logging:
  level: debug
extraction:
  canonical_defaults: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "textos", cfg.InputDir)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Extraction.CanonicalDefaults)
	assert.True(t, cfg.Extraction.Preprocess)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvInputDir, "/data/txt")
	t.Setenv(EnvWorkers, "8")
	t.Setenv(EnvLogFormat, "json")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "/data/txt", cfg.InputDir)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "json", cfg.Logging.Format)

	t.Setenv(EnvWorkers, "many")
	assert.ErrorIs(t, Default().ApplyEnv(), ErrInvalidWorkers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"no input", func(c *Config) { c.InputDir = "" }, ErrMissingInputDir},
		{"no output", func(c *Config) { c.OutputDir = "" }, ErrMissingOutputDir},
		{"zero workers", func(c *Config) { c.Workers = 0 }, ErrInvalidWorkers},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, ErrInvalidLogLevel},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidLogFormat},
		{"no outputs", func(c *Config) { c.Report = ReportConfig{} }, ErrNoOutputsSelected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.StorePath = "becas.db"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "becas.db", loaded.StorePath)
}
