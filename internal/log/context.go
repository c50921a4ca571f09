package log

import (
	"context"
	"log/slog"
	"time"
)

type contextKey struct{}

// WithContext returns a copy of ctx carrying logger.
func WithContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored in ctx, or one wrapping the slog
// default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// HTTPCompleted logs a finished request. 4xx logs at warn, 5xx at error.
func (l *Logger) HTTPCompleted(ctx context.Context, method, path string, status int, elapsed time.Duration, clientIP string) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	l.Logger.Log(ctx, level, "HTTP request completed",
		FieldMethod, method,
		FieldPath, path,
		FieldStatusCode, status,
		FieldDuration, elapsed.Milliseconds(),
		FieldClientIP, clientIP,
	)
}
