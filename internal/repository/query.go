package repository

import (
	"context"

	"amizades/internal/observability"
)

// observeQuery opens a query span and starts the latency timer; the returned func stops both.
func observeQuery(ctx context.Context, operation, table string) (context.Context, func()) {
	ctx, span := observability.StartQuery(ctx, operation, table)
	stop := observability.TrackQuery(operation, table)
	return ctx, func() {
		stop()
		span.End()
	}
}
