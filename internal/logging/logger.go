// Package logging provides structured logging for turing. Records go to a
// colorized console handler (tint) and, optionally, to a JSON log file; both
// handlers share one adjustable level.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
)

// Level represents a log level.
type Level slog.Level

const (
	// LevelDebug is for verbose debugging information.
	LevelDebug = Level(slog.LevelDebug)
	// LevelInfo is for general informational messages.
	LevelInfo = Level(slog.LevelInfo)
	// LevelWarn is for recoverable errors and warnings.
	LevelWarn = Level(slog.LevelWarn)
	// LevelError is for significant errors that may impact functionality.
	LevelError = Level(slog.LevelError)
)

// ParseLevel converts a textual log level into a Level. Unknown values map
// to LevelInfo.
func ParseLevel(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Options configures New.
type Options struct {
	Level   Level
	Output  io.Writer // console output; defaults to os.Stderr
	File    string    // optional JSON log file, appended to
	NoColor bool
}

// Logger is a slog.Logger with an adjustable level and an optional log file.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
	file  *os.File
}

// New creates a Logger from opts.
func New(opts Options) (*Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := new(slog.LevelVar)
	level.Set(slog.Level(opts.Level))

	handlers := []slog.Handler{
		tint.NewHandler(out, &tint.Options{
			Level:      level,
			NoColor:    opts.NoColor,
			TimeFormat: time.TimeOnly,
		}),
	}

	var file *os.File
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	}

	return &Logger{
		Logger: slog.New(slogmulti.Fanout(handlers...)),
		level:  level,
		file:   file,
	}, nil
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.level.Set(slog.Level(level))
}

// Level returns the minimum log level.
func (l *Logger) Level() Level {
	return Level(l.level.Level())
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

var (
	mu            sync.RWMutex
	defaultLogger = mustNew(Options{Level: LevelWarn})
)

func mustNew(opts Options) *Logger {
	l, err := New(opts)
	if err != nil {
		panic(err)
	}
	return l
}

// Init replaces the package-level logger and installs it as slog's default.
// The previous logger's file, if any, is closed.
func Init(opts Options) (*Logger, error) {
	l, err := New(opts)
	if err != nil {
		return nil, err
	}
	SetDefault(l)
	return l, nil
}

// SetDefault replaces the package-level logger.
func SetDefault(l *Logger) {
	mu.Lock()
	prev := defaultLogger
	defaultLogger = l
	mu.Unlock()

	slog.SetDefault(l.Logger)
	if prev != l {
		_ = prev.Close()
	}
}

// Default returns the package-level logger.
func Default() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetLevel sets the minimum log level for the default logger.
func SetLevel(level Level) {
	Default().SetLevel(level)
}

// With returns a slog.Logger carrying additional attributes.
func With(args ...any) *slog.Logger {
	return Default().With(args...)
}

// Debug logs at debug level using the default logger.
func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

// Info logs at info level using the default logger.
func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

// Warn logs at warn level using the default logger.
func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

// Error logs at error level using the default logger.
func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}
