package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sylva-dev/sylva/internal/observability"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}

	for raw, want := range cases {
		level, err := observability.ParseLogLevel(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, level, raw)
	}

	_, err := observability.ParseLogLevel("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestNewLoggerText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := observability.NewLogger(&buf, observability.Config{
		ServiceName: "sylva",
		LogLevel:    slog.LevelInfo,
	})

	logger.Debug("hidden")
	logger.Info("parsed", slog.Int("nodes", 3))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=parsed")
	assert.Contains(t, out, "service=sylva")
	assert.Contains(t, out, "nodes=3")
}

func TestNewLoggerJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := observability.NewLogger(&buf, observability.Config{
		ServiceName: "sylva",
		LogJSON:     true,
	})

	logger.Info("parsed")

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "parsed", record["msg"])
	assert.Equal(t, "sylva", record["service"])
}

func TestTelemetryDisabled(t *testing.T) {
	t.Parallel()

	tel := observability.Init(observability.Config{})
	require.NotNil(t, tel.Meter)

	_, err := tel.CounterValues(context.Background())
	require.ErrorIs(t, err, observability.ErrMetricsDisabled)

	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestTelemetryCounters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tel := observability.Init(observability.Config{Metrics: true})

	counter, err := tel.Meter.Int64Counter("sylva.test.events")
	require.NoError(t, err)

	counter.Add(ctx, 2)
	counter.Add(ctx, 3)

	totals, err := tel.CounterValues(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), totals["sylva.test.events"])

	require.NoError(t, tel.Shutdown(ctx))
}
