package slo

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"byte-highlight/internal/domain/entity"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &io_prometheus_client.Metric{}
	require.NoError(t, g.Write(m))
	return m.GetGauge().GetValue()
}

func send(sent, failed int) *entity.SendLog {
	return &entity.SendLog{
		Mode: entity.DispatchModeIndividual, Sent: sent, Failed: failed,
		CreatedAt: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC),
	}
}

func TestDeliveryTracker_StartsHealthy(t *testing.T) {
	tr := NewDeliveryTracker(prometheus.NewRegistry(), 0)

	assert.Equal(t, 1.0, tr.SuccessRatio())
	assert.True(t, tr.Meeting())
	assert.Equal(t, 1.0, gaugeValue(t, tr.ratio))
}

func TestDeliveryTracker_IgnoresTestAndSandbox(t *testing.T) {
	tr := NewDeliveryTracker(prometheus.NewRegistry(), 5)
	ctx := context.Background()

	test := send(0, 5)
	test.TestMode = true
	tr.DispatchRecorded(ctx, test)
	tr.DispatchRecorded(ctx, &entity.SendLog{Mode: entity.DispatchModeSandbox, Failed: 3})
	tr.DispatchRecorded(ctx, nil)

	assert.Equal(t, 1.0, tr.SuccessRatio())
	assert.Zero(t, gaugeValue(t, tr.last))
}

func TestDeliveryTracker_RatioAndBreach(t *testing.T) {
	tr := NewDeliveryTracker(prometheus.NewRegistry(), 3)
	ctx := context.Background()

	tr.DispatchRecorded(ctx, send(99, 1))
	assert.InDelta(t, 0.99, tr.SuccessRatio(), 1e-9)
	assert.True(t, tr.Meeting())

	tr.DispatchRecorded(ctx, send(0, 100))
	assert.InDelta(t, 0.495, tr.SuccessRatio(), 1e-9)
	assert.False(t, tr.Meeting())
	assert.Equal(t, 1.0, testutil.ToFloat64(tr.breaches))

	// 目標割れが続いても二重にカウントしない
	tr.DispatchRecorded(ctx, send(10, 0))
	assert.Equal(t, 1.0, testutil.ToFloat64(tr.breaches))

	// 窓から外れると回復する
	tr.DispatchRecorded(ctx, send(10, 0))
	tr.DispatchRecorded(ctx, send(10, 0))
	assert.Equal(t, 1.0, tr.SuccessRatio())
	assert.Equal(t, float64(time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC).Unix()), gaugeValue(t, tr.last))
}
