// Package context carries request correlation values across layers.
package context

import (
	"context"
	"strings"
)

type requestIDKey struct{}

// WithRequestID stores the request id in ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, strings.TrimSpace(requestID))
}

// RequestIDFromContext returns the request id, or "" when none is set.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if value, ok := ctx.Value(requestIDKey{}).(string); ok {
		return value
	}
	return ""
}

// Gin context keys set by the invoice handlers and read by the logging and
// tracing middlewares.
const (
	KeyInvoiceOperation = "invoice_operation"
	KeyInvoiceOutcome   = "invoice_outcome"
)
