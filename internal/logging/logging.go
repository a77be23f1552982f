// Package logging builds the structured logger shared by all commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Options selects level, format and destination.
type Options struct {
	// Level is debug, info, warn or error. Empty means info.
	Level string
	// Format is text, json or logfmt. Empty means text.
	Format string
	// Output receives log lines. Nil means stderr.
	Output io.Writer
	// Prefix is printed before every message.
	Prefix string
}

// New creates a logger from opts.
func New(opts Options) (*log.Logger, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	var formatter log.Formatter
	switch strings.ToLower(opts.Format) {
	case "", "text":
		formatter = log.TextFormatter
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("invalid log format %q: must be text, json or logfmt", opts.Format)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	return log.NewWithOptions(out, log.Options{
		Level:           level,
		Formatter:       formatter,
		Prefix:          opts.Prefix,
		ReportTimestamp: true,
	}), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OpenFile opens path for appending, creating its directory.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
