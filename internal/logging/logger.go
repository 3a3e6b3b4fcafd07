// Package logging configures log/slog for VendorHub and derives per-request
// loggers that carry the chi request id and the authenticated caller.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	vendorIDKey
)

// Setup installs the default logger on stdout. Unknown levels fall back to
// info and unknown formats to text.
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ContextWithUser records the authenticated caller for FromContext.
// Either value may be empty.
func ContextWithUser(ctx context.Context, userID, vendorID string) context.Context {
	if userID != "" {
		ctx = context.WithValue(ctx, userIDKey, userID)
	}
	if vendorID != "" {
		ctx = context.WithValue(ctx, vendorIDKey, vendorID)
	}
	return ctx
}

// FromContext returns the default logger with request_id, user_id and
// actor_vendor_id attached when ctx carries them.
func FromContext(ctx context.Context) *slog.Logger {
	return enrich(ctx, slog.Default())
}

func enrich(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if ctx == nil {
		return logger
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if id, ok := ctx.Value(userIDKey).(string); ok {
		logger = logger.With("user_id", id)
	}
	if id, ok := ctx.Value(vendorIDKey).(string); ok {
		logger = logger.With("actor_vendor_id", id)
	}
	return logger
}

// WithFields is FromContext(ctx).With(args...), used for operation-scoped
// loggers such as one import run.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
