package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriteSample_RoundTrip(t *testing.T) {
	want := &Config{
		Width:            100,
		Extensions:       []string{".py", ".pyi"},
		Exclude:          []string{"migrations", "*_pb2.py"},
		RespectGitignore: false,
		GuardLiterals:    true,
		Formatter: FormatterConfig{
			Enabled: true,
			Command: "ruff",
			Args:    []string{"format"},
			Timeout: "5s",
		},
		Log: LogConfig{JSON: true},
	}
	var buf bytes.Buffer
	WriteSample(&buf, want)

	got := &Config{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), got), buf.String())
	assert.Equal(t, want, got)
	assert.NotContains(t, buf.String(), "#--")
	assert.NotContains(t, buf.String(), "{{")
}

func TestWriteSample_FormatterDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Formatter.Enabled = false
	var buf bytes.Buffer
	WriteSample(&buf, cfg)

	assert.False(t, strings.Contains(buf.String(), "command:"), buf.String())

	got := DefaultConfig()
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), got))
	assert.False(t, got.Formatter.Enabled)
	assert.Equal(t, cfg.Width, got.Width)
	assert.Equal(t, cfg.Exclude, got.Exclude)
	assert.NoError(t, got.Validate())
}
