package pipeline

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/otherjamesbrown/minutes-cli/pkg/pipeline"

// stageTracer puts one span around each pipeline stage. With no tracer
// provider installed the spans are no-ops.
type stageTracer struct {
	tracer trace.Tracer
}

func newStageTracer() *stageTracer {
	return &stageTracer{tracer: otel.Tracer(tracerName)}
}

func (t *stageTracer) startStage(ctx context.Context, stage string, items int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "pipeline."+stage,
		trace.WithAttributes(
			attribute.String("pipeline.stage", stage),
			attribute.Int("pipeline.items", items),
		))
}
