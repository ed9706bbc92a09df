// Package logger configures the process-wide slog logger used by the
// pattern language runtime and the CLI.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"
)

var defaultLogger *slog.Logger

// LogLevel is the minimum level that is emitted.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Config holds logger configuration.
type Config struct {
	Level     LogLevel
	Format    string // "text" or "json"
	Output    io.Writer
	AddSource bool
	LogFile   string
}

// DefaultConfig logs warnings and errors as text to stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelWarn,
		Format: "text",
		Output: os.Stderr,
	}
}

// Init installs a logger built from cfg as the global default.
func Init(cfg Config) error {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		output = file
	}

	opts := &slog.HandlerOptions{
		Level:     toSlogLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
	return nil
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger returns the configured logger, or slog's default before Init.
func Logger() *slog.Logger {
	if defaultLogger != nil {
		return defaultLogger
	}
	return slog.Default()
}

func Debug(msg string, args ...any) { Logger().Debug(msg, args...) }
func Info(msg string, args ...any)  { Logger().Info(msg, args...) }
func Warn(msg string, args ...any)  { Logger().Warn(msg, args...) }
func Error(msg string, args ...any) { Logger().Error(msg, args...) }

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// Pipeline helpers

// LogPhase logs the start of a pipeline stage and returns its start time.
func LogPhase(l *slog.Logger, phase string) time.Time {
	l.Debug("starting phase", "phase", phase)
	return time.Now()
}

// LogPhaseComplete logs the end of a pipeline stage.
func LogPhaseComplete(l *slog.Logger, phase string, start time.Time, args ...any) {
	args = append([]any{"phase", phase, "duration", time.Since(start)}, args...)
	l.Debug("completed phase", args...)
}

// LogError logs a pipeline error with its source position.
func LogError(l *slog.Logger, phase, file string, line int, msg string) {
	l.Error("pattern error",
		"phase", phase,
		"file", file,
		"line", line,
		"message", msg)
}
