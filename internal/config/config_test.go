package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName), false)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingRequiredFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_File(t *testing.T) {
	p := writeConfig(t, `
width: 100
extensions: [".py", ".pyi"]
exclude: ["migrations"]
respect_gitignore: false
formatter:
  command: /opt/black
  args: ["--fast"]
  timeout: 5s
log:
  json: true
`)
	cfg, err := Load(p, true)
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, []string{".py", ".pyi"}, cfg.Extensions)
	assert.Equal(t, []string{"migrations"}, cfg.Exclude)
	assert.False(t, cfg.RespectGitignore)
	assert.True(t, cfg.GuardLiterals, "unset keys keep their defaults")
	assert.True(t, cfg.Formatter.Enabled)
	assert.Equal(t, "/opt/black", cfg.Formatter.Command)
	assert.Equal(t, 5*time.Second, cfg.FormatTimeout())
	assert.True(t, cfg.Log.JSON)

	b := cfg.Black()
	require.NotNil(t, b)
	assert.Equal(t, []string{"--fast"}, b.Args)
	assert.Equal(t, 5*time.Second, b.Timeout)
}

func TestLoad_BadYAML(t *testing.T) {
	p := writeConfig(t, "width: [oops\n")
	_, err := Load(p, true)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestLoad_EnvOverrides(t *testing.T) {
	p := writeConfig(t, "width: 100\n")
	t.Setenv("REFLOW_WIDTH", "60")
	t.Setenv("REFLOW_FORMATTER", "ruff format")
	t.Setenv("REFLOW_FORMAT_TIMEOUT", "2s")
	t.Setenv("REFLOW_NO_FORMAT", "true")

	cfg, err := Load(p, true)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Width)
	assert.Equal(t, "ruff", cfg.Formatter.Command)
	assert.Equal(t, []string{"format"}, cfg.Formatter.Args)
	assert.Equal(t, 2*time.Second, cfg.FormatTimeout())
	assert.False(t, cfg.Formatter.Enabled)
	assert.Nil(t, cfg.Black())
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("REFLOW_WIDTH", "wide")
	_, err := Load(filepath.Join(t.TempDir(), FileName), false)
	assert.ErrorContains(t, err, "REFLOW_WIDTH")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"narrow", func(c *Config) { c.Width = 9 }, "below the minimum"},
		{"no extensions", func(c *Config) { c.Extensions = nil }, "no file extensions"},
		{"extension without dot", func(c *Config) { c.Extensions = []string{"py"} }, "must start with a dot"},
		{"bad timeout", func(c *Config) { c.Formatter.Timeout = "soon" }, "invalid formatter timeout"},
		{"no command", func(c *Config) { c.Formatter.Command = "" }, "no command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}

	cfg := DefaultConfig()
	cfg.Width = MinWidth
	cfg.Formatter.Enabled = false
	cfg.Formatter.Command = ""
	assert.NoError(t, cfg.Validate())
}
