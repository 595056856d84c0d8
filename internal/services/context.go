package services

import "context"

type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	operationKey  contextKey = "operation"
	fragmentIDKey contextKey = "fragment_id"
)

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, requestIDKey)
}

// WithOperation annotates context with the logical operation name.
func WithOperation(ctx context.Context, op string) context.Context {
	if op == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey, op)
}

// OperationFromContext returns the operation name if present.
func OperationFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, operationKey)
}

// WithFragmentID annotates context with the fragment being operated on.
func WithFragmentID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, fragmentIDKey, id)
}

// FragmentIDFromContext returns the fragment id if present.
func FragmentIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, fragmentIDKey)
}

func stringValue(ctx context.Context, key contextKey) (string, bool) {
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
