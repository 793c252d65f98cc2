// Package logger is the process-wide structured logger.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

type ctxKey struct{}

// ContextWithRequestID stores the request id so WithContext can attach it.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// RequestID returns the request id stored on ctx, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Init replaces the global logger. level is debug, info, warn or error;
// anything else means info.
func Init(level string, json bool) {
	initTo(os.Stdout, level, json)
}

func initTo(w io.Writer, level string, json bool) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if json {
		h = slog.NewJSONHandler(w, opts)
	}
	l := slog.New(h)
	current.Store(l)
	slog.SetDefault(l)
}

// Get returns the global logger, creating an info-level text logger on
// first use.
func Get() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	Init("info", false)
	return current.Load()
}

// WithContext adds the request id carried by ctx.
func WithContext(ctx context.Context) *slog.Logger {
	if id := RequestID(ctx); id != "" {
		return Get().With("request_id", id)
	}
	return Get()
}

func With(args ...any) *slog.Logger { return Get().With(args...) }

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }
func Info(msg string, args ...any)  { Get().Info(msg, args...) }
func Warn(msg string, args ...any)  { Get().Warn(msg, args...) }
func Error(msg string, args ...any) { Get().Error(msg, args...) }

// Fatal logs at error level and exits.
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}
