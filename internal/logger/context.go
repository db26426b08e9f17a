package logger

import (
	"context"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds request-scoped logging context populated by the HTTP
// middleware and attached to every *Ctx log call.
type LogContext struct {
	RequestID string // chi request ID
	ClientIP  string // client IP address (without port)
	Username  string // authenticated login name, if any
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// appendContextFields appends the LogContext fields, when present, to the
// structured log arguments.
func appendContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}
	if lc.RequestID != "" {
		args = append(args, "request_id", lc.RequestID)
	}
	if lc.ClientIP != "" {
		args = append(args, "client_ip", lc.ClientIP)
	}
	if lc.Username != "" {
		args = append(args, "username", lc.Username)
	}
	return args
}
