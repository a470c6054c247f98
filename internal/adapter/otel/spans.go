package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "scenariogen"

// StartCompileSpan starts a span covering one scenario compilation.
func StartCompileSpan(ctx context.Context, compileID string, participants int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "compile",
		trace.WithAttributes(
			attribute.String("compile.id", compileID),
			attribute.Int("scenario.participants", participants),
		),
	)
}

// StartLookupSpan starts a span for one catalog lookup.
func StartLookupSpan(ctx context.Context, agent, catalogID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "catalog.lookup",
		trace.WithAttributes(
			attribute.String("agent.label", agent),
			attribute.String("agent.catalog_id", catalogID),
		),
	)
}

// EndSpan records err on the span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
