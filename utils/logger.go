package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides leveled logging throughout the application.
// Info, Warn and Debug go to stdout; Error goes to stderr.
type Logger struct {
	out zerolog.Logger
	err zerolog.Logger
}

// NewLogger creates a Logger at info level with human-readable output.
func NewLogger() *Logger {
	return NewLoggerWith("info", true)
}

// NewLoggerWith creates a Logger with the given level. Pretty selects the
// console format; otherwise every line is a JSON object.
func NewLoggerWith(level string, pretty bool) *Logger {
	lvl := parseLevel(level)
	return &Logger{
		out: newZerolog(os.Stdout, lvl, pretty),
		err: newZerolog(os.Stderr, lvl, pretty),
	}
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{out: zerolog.Nop(), err: zerolog.Nop()}
}

func newZerolog(w io.Writer, lvl zerolog.Level, pretty bool) zerolog.Logger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Zerolog exposes the stdout logger for components that log structured fields.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.out
}

func (l *Logger) Info(format string, args ...any) {
	l.out.Info().Msgf(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.out.Warn().Msgf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Error().Msgf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.out.Debug().Msgf(format, args...)
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
