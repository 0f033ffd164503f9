// Package logger builds the slog loggers used by the headless tools.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Mode selects a handler preset.
type Mode uint8

const (
	// ModeDev writes human readable text at debug level to stderr.
	ModeDev Mode = iota
	// ModeProd writes JSON at info level to stdout.
	ModeProd
	// ModeSilent discards everything.
	ModeSilent
)

// ParseMode maps a flag value to a Mode. Unknown values select ModeDev.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prod", "json":
		return ModeProd
	case "silent", "silence", "off":
		return ModeSilent
	default:
		return ModeDev
	}
}

// New returns a logger for the given mode.
func New(mode Mode) *slog.Logger {
	return slog.New(handler(mode, nil))
}

// NewWriter returns a logger for mode that writes to w instead of the
// standard streams.
func NewWriter(mode Mode, w io.Writer) *slog.Logger {
	return slog.New(handler(mode, w))
}

func handler(mode Mode, w io.Writer) slog.Handler {
	switch mode {
	case ModeProd:
		if w == nil {
			w = os.Stdout
		}
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	case ModeSilent:
		return slog.NewTextHandler(io.Discard, nil)
	default:
		if w == nil {
			w = os.Stderr
		}
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}
