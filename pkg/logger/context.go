package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const runIDKey contextKey = "run_id"

// WithRunID attaches a batch run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunID returns the run ID stored in ctx, or ""
func RunID(ctx context.Context) string {
	if runID, ok := ctx.Value(runIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithContext returns the global logger annotated with the context's run ID
func WithContext(ctx context.Context) *zap.Logger {
	logger := Get()
	if runID := RunID(ctx); runID != "" {
		logger = logger.With(zap.String("run_id", runID))
	}
	return logger
}
