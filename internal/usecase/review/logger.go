package review

import "context"

// Logger provides structured logging for the review pipeline. The
// orchestrator depends only on this interface; the zerolog
// implementation lives in the observability adapter.
type Logger interface {
	// Debug logs diagnostic detail, such as snippet lookup misses.
	Debug(ctx context.Context, message string, fields map[string]any)

	// Info logs pipeline progress with structured fields.
	Info(ctx context.Context, message string, fields map[string]any)

	// Warn logs recoverable problems, such as a failed history save.
	Warn(ctx context.Context, message string, fields map[string]any)

	// Error logs failures that abort the run.
	Error(ctx context.Context, message string, fields map[string]any)
}
