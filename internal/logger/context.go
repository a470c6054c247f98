package logger

import "context"

// contextKey is a private type to prevent collisions with other context keys.
type contextKey int

const (
	compileIDKey contextKey = iota
	requestIDKey
)

// WithCompileID returns a new context with the given compile ID stored.
func WithCompileID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, compileIDKey, id)
}

// CompileID extracts the compile ID from the context.
// Returns an empty string if no compile ID is set.
func CompileID(ctx context.Context) string {
	id, _ := ctx.Value(compileIDKey).(string)
	return id
}

// WithRequestID returns a new context carrying the HTTP request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID extracts the HTTP request ID, or "" when none is set.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
