// Package log carries a structured logger in the context.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type contextKey struct{}

const (
	LevelDebug = int(slog.LevelDebug)
	LevelInfo  = int(slog.LevelInfo)
	LevelWarn  = int(slog.LevelWarn)
	LevelErr   = int(slog.LevelError)

	OutputJSON = 1
	OutputText = 2
)

// NewContext returns a context with an injected logger.
func NewContext(ctx context.Context, level, format int, w io.Writer) context.Context {
	l := slog.LevelVar{}
	l.Set(slog.Level(level))

	opts := &slog.HandlerOptions{Level: &l}
	if format == OutputJSON {
		return newContext(ctx, slog.New(slog.NewJSONHandler(w, opts)))
	}
	return newContext(ctx, slog.New(slog.NewTextHandler(w, opts)))
}

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(level string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelErr, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}

// ParseFormat accepts json and text.
func ParseFormat(format string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return 0, fmt.Errorf("unknown log format %q", format)
	}
}

// CopyFromContext returns dest carrying the logger found in orig.
func CopyFromContext(orig, dest context.Context) context.Context {
	return newContext(dest, fromContext(orig))
}

// With returns a context whose logger includes args on every record.
func With(ctx context.Context, args ...any) context.Context {
	return newContext(ctx, fromContext(ctx).With(args...))
}

func Debug(ctx context.Context, msg string, args ...any) {
	fromContext(ctx).Debug(msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	fromContext(ctx).Info(msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	fromContext(ctx).Warn(msg, args...)
}

// Error logs err under the "err" attribute.
func Error(ctx context.Context, msg string, err error, args ...any) {
	fromContext(ctx).Error(msg, append([]any{"err", err}, args...)...)
}

func newContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func fromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
