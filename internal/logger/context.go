package logger

import (
	"context"
	"log/slog"
	"time"
)

// GetDeadlineInfo returns logging attributes for context deadline information.
// Returns the absolute deadline time and remaining duration if set, or "none" if no deadline.
func GetDeadlineInfo(ctx context.Context) []any {
	deadline, ok := ctx.Deadline()
	if !ok {
		return []any{"deadline", "none", "deadline_remaining", "none"}
	}

	remaining := time.Until(deadline)
	return []any{
		"deadline", deadline.Format(time.RFC3339),
		"deadline_remaining", remaining.String(),
	}
}

// WithUser returns a logger enriched with the hub username the current
// operation acts as. Reconciler tasks use it so every log line carries
// its owner.
func WithUser(base *slog.Logger, username string) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	if username == "" {
		return base
	}
	return base.With("username", username)
}
