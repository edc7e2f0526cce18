// Tracing instrumentation for debate runs.
package debate

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func tracer() trace.Tracer {
	return otel.Tracer("github.com/zblgg/ai-debate-tool/internal/debate")
}

// startRunSpan starts a span covering the whole pipeline run.
func startRunSpan(ctx context.Context, runID string, mode Mode) (context.Context, trace.Span) {
	ctx, span := tracer().Start(ctx, "debate.run")
	span.SetAttributes(
		attribute.String("debate.run_id", runID),
		attribute.String("debate.mode", string(mode)),
	)
	return ctx, span
}

// startPhaseSpan starts a span for one phase.
func startPhaseSpan(ctx context.Context, phase PhaseID, agents int) (context.Context, trace.Span) {
	ctx, span := tracer().Start(ctx, "phase."+string(phase))
	span.SetAttributes(
		attribute.String("phase.name", string(phase)),
		attribute.Int("phase.agents", agents),
	)
	return ctx, span
}

// endPhaseSpan records per-agent acceptance on the span and ends it.
func endPhaseSpan(span trace.Span, result PhaseResult) {
	failed := 0
	for _, res := range result {
		if !res.OK() {
			failed++
		}
	}
	span.SetAttributes(attribute.Int("phase.failed_agents", failed))
	span.End()
}
