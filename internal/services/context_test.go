package services_test

import (
	"context"
	"testing"

	"fragments/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithFragmentID(ctx, "abc")
	ctx = services.WithOperation(ctx, "get")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.FragmentIDFromContext(ctx); !ok || id != "abc" {
		t.Fatalf("unexpected fragment id: %v %v", id, ok)
	}
	if op, ok := services.OperationFromContext(ctx); !ok || op != "get" {
		t.Fatalf("unexpected operation: %v %v", op, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithOperation(ctx, "")
	ctx = services.WithFragmentID(ctx, "")
	if _, ok := services.OperationFromContext(ctx); ok {
		t.Fatal("expected no operation value")
	}
	if _, ok := services.FragmentIDFromContext(ctx); ok {
		t.Fatal("expected no fragment id value")
	}
}
