package config

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvString(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		want         string
		wantFallback bool
	}{
		{name: "unset uses default", value: "", want: "0 9 * * 1"},
		{name: "valid value", value: "30 6 * * 5", want: "30 6 * * 5"},
		{name: "invalid falls back", value: "not a cron", want: "0 9 * * 1", wantFallback: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_CRON", tt.value)
			r := LoadEnvString("TEST_CRON", "0 9 * * 1", ValidateCronSchedule)
			assert.Equal(t, tt.want, r.Value)
			assert.Equal(t, tt.wantFallback, r.FallbackApplied)
			if tt.wantFallback {
				assert.Contains(t, r.Warning, "TEST_CRON")
			}
		})
	}
}

func TestLoadEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	assert.Equal(t, 42, LoadEnvInt("TEST_INT", 1, IntRange(1, 100)).Value)

	t.Setenv("TEST_INT", "abc")
	r := LoadEnvInt("TEST_INT", 7, nil)
	assert.True(t, r.FallbackApplied)
	assert.Equal(t, 7, r.Value)

	t.Setenv("TEST_INT", "500")
	r = LoadEnvInt("TEST_INT", 7, IntRange(1, 100))
	assert.True(t, r.FallbackApplied)
	assert.Equal(t, 7, r.Value)
}

func TestLoadEnvDuration(t *testing.T) {
	t.Setenv("TEST_DUR", "45m")
	assert.Equal(t, 45*time.Minute, LoadEnvDuration("TEST_DUR", time.Minute, nil).Value)

	t.Setenv("TEST_DUR", "5s")
	r := LoadEnvDuration("TEST_DUR", time.Minute, DurationRange(time.Minute, time.Hour))
	assert.True(t, r.FallbackApplied)
	assert.Equal(t, time.Minute, r.Value)
}

func TestLoadEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	assert.True(t, LoadEnvBool("TEST_BOOL", false).Value)

	t.Setenv("TEST_BOOL", "maybe")
	r := LoadEnvBool("TEST_BOOL", false)
	assert.False(t, r.Value)
	assert.True(t, r.FallbackApplied)
}

func TestTracker(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConfigMetrics("tracker_test", reg)
	tr := &Tracker{Metrics: m}

	assert.Equal(t, 3, Apply(tr, "ok", Result[int]{Value: 3}))
	assert.False(t, tr.FallbackActive())

	assert.Equal(t, "UTC", Apply(tr, "timezone", Result[string]{Value: "UTC", FallbackApplied: true, Warning: "bad"}))
	tr.Done()

	assert.True(t, tr.FallbackActive())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("timezone")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationErrorsTotal.WithLabelValues("timezone")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackActive))
}

func TestNewConfigMetrics_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewConfigMetrics("twice", reg)
	require.NotPanics(t, func() {
		b := NewConfigMetrics("twice", reg)
		a.RecordFallback("f")
		assert.Equal(t, 1.0, testutil.ToFloat64(b.FallbacksTotal.WithLabelValues("f")))
	})
}
