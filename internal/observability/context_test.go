package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDContext(t *testing.T) {
	t.Run("stores and retrieves request ID", func(t *testing.T) {
		ctx := context.Background()
		ctx = WithRequestID(ctx, "req-123")

		result := RequestIDFromContext(ctx)
		assert.Equal(t, "req-123", result)
	})

	t.Run("returns empty string when not set", func(t *testing.T) {
		ctx := context.Background()
		result := RequestIDFromContext(ctx)
		assert.Equal(t, "", result)
	})

	t.Run("overwrites previous value", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "first")
		ctx = WithRequestID(ctx, "second")
		assert.Equal(t, "second", RequestIDFromContext(ctx))
	})

	t.Run("ignores foreign values under a string key", func(t *testing.T) {
		//nolint:staticcheck // deliberately colliding plain string key
		ctx := context.WithValue(context.Background(), "request_id", "not-ours")
		assert.Empty(t, RequestIDFromContext(ctx))
	})
}
