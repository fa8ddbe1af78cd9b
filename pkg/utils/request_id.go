package utils

import "context"

// MaxRequestIDLength bounds caller-supplied request ids. Stored analyses keep
// the id in a column of this size.
const MaxRequestIDLength = 64

type requestIDKey struct{}

// ContextWithRequestID attaches a request id for downstream logging.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id, or "" when none is set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
