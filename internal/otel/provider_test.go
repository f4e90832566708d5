package otel

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(Config{Enabled: false})
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.Nil(t, p.LoggerProvider())
	assert.Equal(t, noop.Meter{}, p.Meter("x"))
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_EnabledWithoutSinks(t *testing.T) {
	_, err := New(Config{Enabled: true, ServiceName: "genie-dat"})
	assert.Error(t, err)
}

func TestNew_LogAndMetricWriters(t *testing.T) {
	t.Cleanup(func() { otel.SetMeterProvider(noop.NewMeterProvider()) })

	var logs, metrics bytes.Buffer
	p, err := New(Config{
		Enabled:      true,
		ServiceName:  "genie-dat",
		LogWriter:    &logs,
		MetricWriter: &metrics,
	})
	require.NoError(t, err)
	require.NotNil(t, p.LoggerProvider())

	counter, err := otel.Meter("test").Int64Counter("genie.archives.decoded")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	require.NoError(t, p.Flush(context.Background()))
	assert.Contains(t, metrics.String(), "genie.archives.decoded")
	assert.Contains(t, metrics.String(), "genie-dat")

	require.NoError(t, p.Shutdown(context.Background()))
}
