package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithLoggerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Info("hello", "k", "v")

	assert.Same(t, logger, FromContext(ctx))
	assert.Contains(t, buf.String(), "k=v")
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWith_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	ctx = With(ctx, "run", 3)
	FromContext(ctx).Info("selected")

	assert.Contains(t, buf.String(), "run=3")
}
