// Package logger wraps log/slog so every package logs through the same
// handler and level configuration.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger embeds slog.Logger; callers use the slog methods directly.
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Level  string `yaml:"level" json:"level"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format" json:"format"` // "text", "json"
	Output string `yaml:"output" json:"output"` // "stderr", "stdout", "file"
	File   string `yaml:"file" json:"file"`     // path when Output is "file"
}

var globalLogger *Logger

// New creates a Logger from config. Unknown levels fall back to info,
// unknown formats to text.
func New(config Config) *Logger {
	var level slog.Level
	switch strings.ToLower(config.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var writer io.Writer = os.Stderr
	switch config.Output {
	case "stdout":
		writer = os.Stdout
	case "file":
		if config.File != "" {
			if f, err := os.OpenFile(config.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
				writer = f
			}
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(config.Format) == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	l := &Logger{Logger: slog.New(handler)}
	if globalLogger == nil {
		globalLogger = l
	}
	return l
}

// Global returns the process-wide logger, creating a text/info one on
// first use.
func Global() *Logger {
	if globalLogger == nil {
		return New(Config{Level: "info", Format: "text"})
	}
	return globalLogger
}

// SetGlobal replaces the process-wide logger.
func SetGlobal(l *Logger) {
	globalLogger = l
}

// With returns a child logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}
