package transform

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
)

// transformMetrics counts engine activity through the OpenTelemetry metric
// API. All methods are nil-receiver safe; a Transformer without a meter pays
// nothing.
type transformMetrics struct {
	transformed  metric.Int64Counter
	placeholders metric.Int64Counter
	failures     metric.Int64Counter
}

// WithMeter enables transformation metrics on the given meter. Instrument
// registration failures disable metrics and are logged, never fatal.
func WithMeter(meter metric.Meter) Option {
	return func(t *Transformer) {
		metrics, err := newTransformMetrics(meter)
		if err != nil {
			slog.Warn("transform metrics disabled", "error", err)

			return
		}

		t.metrics = metrics
	}
}

func newTransformMetrics(meter metric.Meter) (*transformMetrics, error) {
	transformed, err := meter.Int64Counter("sylva.transform.nodes",
		metric.WithDescription("Nodes successfully transformed."))
	if err != nil {
		return nil, err
	}

	placeholders, err := meter.Int64Counter("sylva.transform.placeholders",
		metric.WithDescription("Placeholder nodes produced for unmapped source types."))
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter("sylva.transform.failures",
		metric.WithDescription("Constructor failures isolated as error placeholders."))
	if err != nil {
		return nil, err
	}

	return &transformMetrics{
		transformed:  transformed,
		placeholders: placeholders,
		failures:     failures,
	}, nil
}

func (m *transformMetrics) nodeTransformed() {
	if m == nil {
		return
	}

	m.transformed.Add(context.Background(), 1)
}

func (m *transformMetrics) placeholderProduced() {
	if m == nil {
		return
	}

	m.placeholders.Add(context.Background(), 1)
}

func (m *transformMetrics) failureIsolated() {
	if m == nil {
		return
	}

	m.failures.Add(context.Background(), 1)
}
