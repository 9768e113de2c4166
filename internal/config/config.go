// Package config loads reflow settings from .reflow.yaml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/unixthat/reflow-comments/internal/format"
	"github.com/unixthat/reflow-comments/internal/reflow"
	"github.com/unixthat/reflow-comments/internal/walk"
)

// FileName is the config file looked up in the working directory.
const FileName = ".reflow.yaml"

// MinWidth is the narrowest line width accepted.
const MinWidth = 10

type Config struct {
	Width            int             `yaml:"width"`
	Extensions       []string        `yaml:"extensions"`
	Exclude          []string        `yaml:"exclude"`
	RespectGitignore bool            `yaml:"respect_gitignore"`
	GuardLiterals    bool            `yaml:"guard_literals"`
	Formatter        FormatterConfig `yaml:"formatter"`
	Log              LogConfig       `yaml:"log"`
}

type FormatterConfig struct {
	Enabled bool     `yaml:"enabled"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Timeout string   `yaml:"timeout"`
}

type LogConfig struct {
	JSON bool `yaml:"json"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Width:            reflow.DefaultWidth,
		Extensions:       append([]string(nil), walk.DefaultExtensions...),
		Exclude:          []string{"__pycache__", ".venv", "venv", ".tox"},
		RespectGitignore: true,
		GuardLiterals:    true,
		Formatter: FormatterConfig{
			Enabled: true,
			Command: format.DefaultCommand,
			Timeout: "30s",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. A missing file yields the defaults unless
// required is set. A .env file in the working directory is loaded
// first if present.
func Load(path string, required bool) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !required:
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("REFLOW_WIDTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REFLOW_WIDTH: %w", err)
		}
		c.Width = n
	}
	if v := os.Getenv("REFLOW_FORMATTER"); v != "" {
		fields := strings.Fields(v)
		c.Formatter.Command = fields[0]
		if len(fields) > 1 {
			c.Formatter.Args = fields[1:]
		}
	}
	if v := os.Getenv("REFLOW_FORMAT_TIMEOUT"); v != "" {
		c.Formatter.Timeout = v
	}
	if v := os.Getenv("REFLOW_NO_FORMAT"); v != "" {
		off, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("REFLOW_NO_FORMAT: %w", err)
		}
		c.Formatter.Enabled = !off
	}
	return nil
}

// FormatTimeout returns the formatter timeout. Zero means no limit.
func (c *Config) FormatTimeout() time.Duration {
	d, err := time.ParseDuration(c.Formatter.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Validate reports settings reflow cannot run with.
func (c *Config) Validate() error {
	if c.Width < MinWidth {
		return fmt.Errorf("width %d is below the minimum of %d", c.Width, MinWidth)
	}
	if len(c.Extensions) == 0 {
		return errors.New("no file extensions configured")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	if c.Formatter.Timeout != "" {
		if d, err := time.ParseDuration(c.Formatter.Timeout); err != nil || d < 0 {
			return fmt.Errorf("invalid formatter timeout %q", c.Formatter.Timeout)
		}
	}
	if c.Formatter.Enabled && c.Formatter.Command == "" {
		return errors.New("formatter enabled but no command set")
	}
	return nil
}

// Black returns the formatter described by the config, or nil when
// formatting is disabled.
func (c *Config) Black() *format.Black {
	if !c.Formatter.Enabled {
		return nil
	}
	return &format.Black{
		Command: c.Formatter.Command,
		Args:    c.Formatter.Args,
		Timeout: c.FormatTimeout(),
	}
}
