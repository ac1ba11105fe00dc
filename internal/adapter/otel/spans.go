package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "cartforge"

// StartCartSpan starts a span for a single cart operation.
func StartCartSpan(ctx context.Context, op, cartID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "cart."+op,
		trace.WithAttributes(
			attribute.String("cart.id", cartID),
		),
	)
}

// StartMergeSpan starts a span for a cart merge.
func StartMergeSpan(ctx context.Context, dstID, srcID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "cart.merge",
		trace.WithAttributes(
			attribute.String("cart.id", dstID),
			attribute.String("cart.source_id", srcID),
		),
	)
}

// StartSweepSpan starts a span for one abandoned-cart sweep pass.
func StartSweepSpan(ctx context.Context) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "cart.sweep")
}
