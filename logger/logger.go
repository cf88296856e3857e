// Package logger provides the channel-tagged, leveled logger contract the
// core consumes: severities {trace, info, warn, error}. The core performs
// no logging I/O of its own beyond these calls.
//
// Grounded on Kong-kongctl/internal/log's slog wrapping: a custom trace
// level below slog.LevelDebug, and a string->Level parser for config
// files.
package logger

import (
	"context"
	"log/slog"
	"os"
)

// LevelTrace sits below slog's built-in Debug level, exactly as the
// reference CLI defines its custom trace level.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps the spec's four severity names to a slog.Level.
// Unrecognized strings fall back to LevelError, matching the reference
// CLI's defensive default.
func ParseLevel(s string) slog.Level {
	switch s {
	case "trace":
		return LevelTrace
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}

// Logger is a channel-tagged wrapper around *slog.Logger.
type Logger struct {
	*slog.Logger
}

// New wraps an arbitrary slog.Handler.
func New(h slog.Handler) *Logger {
	return &Logger{slog.New(h)}
}

// Default returns a Logger writing text records to stderr at LevelTrace,
// suitable for development and for the demo binary.
func Default() *Logger {
	return New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: LevelTrace}))
}

// WithChannel tags every subsequent record from the returned Logger with
// a "channel" attribute, the Go analogue of the spec's channel-tagged
// logger (one Logger instance per subsystem: "executor", "safety", ...).
func (l *Logger) WithChannel(name string) *Logger {
	return &Logger{l.Logger.With("channel", name)}
}

// Trace logs at LevelTrace.
func (l *Logger) Trace(msg string, args ...any) {
	l.Logger.Log(context.Background(), LevelTrace, msg, args...)
}

// Warn and Error are already provided by the embedded *slog.Logger
// (Warn, Error); Info likewise. Trace is the only severity the stdlib
// logger lacks, added above.
