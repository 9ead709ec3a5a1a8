// Package logging configures structured logging: colored text with tint for
// terminals, or JSON for log collectors.
//
// Usage:
//
//	logging.Setup(logging.Options{Level: slog.LevelDebug})
//	logging.Setup(logging.Options{Format: logging.FormatJSON})
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options select the handler. The zero value logs colored text at INFO to stderr.
type Options struct {
	Level  slog.Level
	Format string
	Writer io.Writer
}

// New builds a logger for the given options.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	if opts.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     opts.Level,
			AddSource: true,
		}))
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	}))
}

// Setup installs the logger built from opts as the slog default and returns it.
func Setup(opts Options) *slog.Logger {
	logger := New(opts)
	slog.SetDefault(logger)
	return logger
}
