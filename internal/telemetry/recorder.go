package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/BaSui01/schemaflow/structured"
)

const instrumentationName = "github.com/BaSui01/schemaflow/internal/telemetry"

// Recorder exports pipeline measurements as OTel metrics. It implements
// structured.Recorder.
type Recorder struct {
	runs         metric.Int64Counter
	duration     metric.Float64Histogram
	units        metric.Int64Histogram
	promptTokens metric.Int64Histogram
}

var _ structured.Recorder = (*Recorder)(nil)

// NewRecorder creates the instruments on mp.
func NewRecorder(mp metric.MeterProvider) (*Recorder, error) {
	meter := mp.Meter(instrumentationName)

	runs, err := meter.Int64Counter("schemaflow.pipeline.runs",
		metric.WithDescription("Structured generation runs"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("schemaflow.pipeline.duration",
		metric.WithDescription("Structured generation run duration"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	units, err := meter.Int64Histogram("schemaflow.pipeline.units",
		metric.WithDescription("Response units received per run"))
	if err != nil {
		return nil, err
	}
	promptTokens, err := meter.Int64Histogram("schemaflow.pipeline.prompt_tokens",
		metric.WithDescription("Estimated prompt tokens per run"))
	if err != nil {
		return nil, err
	}
	return &Recorder{runs: runs, duration: duration, units: units, promptTokens: promptTokens}, nil
}

func (r *Recorder) RecordRun(provider string, kind structured.ErrorKind, d time.Duration, units int) {
	outcome := "success"
	if kind != "" {
		outcome = string(kind)
	}
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	)
	r.runs.Add(ctx, 1, attrs)
	r.duration.Record(ctx, d.Seconds(), attrs)
	r.units.Record(ctx, int64(units), metric.WithAttributes(attribute.String("provider", provider)))
}

func (r *Recorder) RecordPromptTokens(provider string, tokens int) {
	r.promptTokens.Record(context.Background(), int64(tokens),
		metric.WithAttributes(attribute.String("provider", provider)))
}
