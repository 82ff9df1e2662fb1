// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// EnvLevel names the environment variable that overrides the log level.
const EnvLevel = "JIG_LOG_LEVEL"

// Options controls logger construction.
type Options struct {
	Verbose bool
	NoColor bool
}

// ParseLevel maps a level name to a slog.Level. Unknown names yield warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Level returns the effective level: debug when verbose, otherwise
// JIG_LOG_LEVEL, otherwise warn.
func Level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return ParseLevel(os.Getenv(EnvLevel))
}

// New builds a tint logger writing to w. Colour is disabled by NoColor, by
// NO_COLOR in the environment, or when w is not a terminal.
func New(w io.Writer, opts Options) *slog.Logger {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      Level(opts.Verbose),
		TimeFormat: time.TimeOnly,
		NoColor:    !useColor(w, opts.NoColor),
	})
	return slog.New(handler)
}

// Init builds a stderr logger and installs it as the slog default.
func Init(opts Options) *slog.Logger {
	logger := New(os.Stderr, opts)
	slog.SetDefault(logger)
	return logger
}

func useColor(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
