// Package logging builds the structured operator logger.
//
// Lines go to stderr unless Options.File names a log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Format selects how log lines are encoded.
type Format string

const (
	// FormatConsole writes human-readable lines.
	FormatConsole Format = "console"
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"
)

// Options configures New.
type Options struct {
	Service string
	Level   string
	Format  Format
	// File, when set, receives log lines instead of stderr. The file is
	// truncated on open.
	File string
	// Writer overrides both stderr and File. Used by tests.
	Writer io.Writer
}

// New returns a logger and a close function for any file it opened.
func New(opts Options) (zerolog.Logger, func() error, error) {
	noClose := func() error { return nil }

	level := zerolog.InfoLevel
	if raw := strings.TrimSpace(opts.Level); raw != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err != nil {
			return zerolog.Nop(), noClose, fmt.Errorf("parse log level %q: %w", raw, err)
		}
		level = parsed
	}

	var (
		out     io.Writer = os.Stderr
		closeFn           = noClose
	)
	switch {
	case opts.Writer != nil:
		out = opts.Writer
	case strings.TrimSpace(opts.File) != "":
		path := filepath.Clean(opts.File)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return zerolog.Nop(), noClose, fmt.Errorf("open log file: %w", err)
		}
		out = file
		closeFn = file.Close
	}

	switch opts.Format {
	case "", FormatConsole:
		if opts.Writer == nil {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: strings.TrimSpace(opts.File) != ""}
		}
	case FormatJSON:
	default:
		_ = closeFn()
		return zerolog.Nop(), noClose, fmt.Errorf("unknown log format %q", opts.Format)
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if service := strings.TrimSpace(opts.Service); service != "" {
		ctx = ctx.Str("service", service)
	}
	return ctx.Logger(), closeFn, nil
}
