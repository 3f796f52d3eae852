package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "sylva"

// ErrMetricsDisabled is returned when metric collection is requested on a
// Telemetry built with metrics off.
var ErrMetricsDisabled = errors.New("metrics are disabled")

// Telemetry holds the process meter and, when metrics are enabled, the manual
// reader used to collect counters at the end of a run. With metrics disabled
// the meter is a no-op with zero overhead.
type Telemetry struct {
	Meter    metric.Meter
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
}

// Init builds the Telemetry for this process.
func Init(cfg Config) *Telemetry {
	if !cfg.Metrics {
		return &Telemetry{Meter: noopmetric.NewMeterProvider().Meter(meterName)}
	}

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
		)),
	)

	return &Telemetry{
		Meter:    provider.Meter(meterName),
		reader:   reader,
		provider: provider,
	}
}

// Collect returns all metrics recorded so far. Sums are cumulative.
func (t *Telemetry) Collect(ctx context.Context) (*metricdata.ResourceMetrics, error) {
	if t.reader == nil {
		return nil, ErrMetricsDisabled
	}

	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collecting metrics: %w", err)
	}

	return &rm, nil
}

// CounterValues flattens collected metrics into name → total pairs, which is
// all the CLI needs to print.
func (t *Telemetry) CounterValues(ctx context.Context) (map[string]int64, error) {
	rm, err := t.Collect(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int64)

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}

			for _, point := range sum.DataPoints {
				totals[m.Name] += point.Value
			}
		}
	}

	return totals, nil
}

// Shutdown flushes and releases the meter provider.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}

	if err := t.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down meter provider: %w", err)
	}

	return nil
}
