package logger

import (
	"fmt"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger and doubles as a gorm logger.Writer.
type Logger struct {
	*slog.Logger
}

func New(level string) *Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything. Used by tests and one-shot CLI runs.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// With returns a child logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Printf satisfies gorm's logger.Writer; gorm only emits slow queries and errors at warn.
func (l *Logger) Printf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...), "component", "gorm")
}
