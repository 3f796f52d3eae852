package transform_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/sylva-dev/sylva/pkg/transform"
)

func TestTransformMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	tr := newTestTransformer(transform.WithMeter(meter))

	_, err := tr.Transform(&srcGroup{Items: []any{
		&srcLeaf{Value: "ok"},
		&struct{ Unknown int }{},
		&srcBad{},
	}}, nil)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

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

	// The group and the leaf transform; the unknown type and the failing
	// constructor each produce a placeholder.
	assert.Equal(t, int64(2), totals["sylva.transform.nodes"])
	assert.Equal(t, int64(1), totals["sylva.transform.placeholders"])
	assert.Equal(t, int64(1), totals["sylva.transform.failures"])
}
