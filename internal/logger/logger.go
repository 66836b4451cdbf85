// Package logger builds the application's zerolog loggers from configuration.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Standard field keys.
const (
	FieldComponent = "component"
	FieldMode      = "mode"
	FieldMethod    = "method"
	FieldURL       = "url"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldWorkload  = "workload_id"
)

// Supported formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config contains logging configuration.
type Config struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	File    string `mapstructure:"file"`
	NoColor bool   `mapstructure:"no_color"`
}

// Validate checks level and format.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil || c.Level == "" {
		return fmt.Errorf("log.level must be one of trace, debug, info, warn, error (got: %q)", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case FormatConsole, FormatJSON:
		return nil
	default:
		return fmt.Errorf("log.format must be one of %s, %s (got: %q)", FormatConsole, FormatJSON, c.Format)
	}
}

// New creates a logger writing to w. If cfg.File is set, the file takes precedence over w;
// the returned closer releases it.
func New(cfg Config, w io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var closer io.Closer = nopCloser{}
	out := w
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o750); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory for %s: %w", cfg.File, err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 -- path from configuration
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
		}
		out = f
		closer = f
	}

	if strings.ToLower(cfg.Format) != FormatJSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
			NoColor:    cfg.NoColor || cfg.File != "",
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), closer, nil
}

// Component returns a child logger tagged with a component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str(FieldComponent, name).Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
