package logging

import (
	"context"
	"log/slog"

	"fragments/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRequestID carries the X-Request-Id sent with an API call.
	FieldRequestID = "request_id"
	// FieldOperation names the logical API operation (list, get, convert, ...).
	FieldOperation = "operation"
	// FieldFragmentID is the standardized key for fragment identifiers.
	FieldFragmentID = "fragment_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if op, ok := services.OperationFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldOperation, op))
	}
	if id, ok := services.FragmentIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldFragmentID, id))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRequestID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
