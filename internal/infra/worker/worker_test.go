package worker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"byte-highlight/internal/pkg/config"
	"byte-highlight/internal/usecase/notify"
)

/* ───────── 設定 ───────── */

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	metrics := config.NewConfigMetrics("worker_defaults_test", prometheus.NewRegistry())
	cfg := LoadConfigFromEnv(nil, metrics)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.FallbackActive))
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("NEWSLETTER_CRON", "30 7 * * 5")
	t.Setenv("IMPORT_CRON", "0 */6 * * *")
	t.Setenv("NEWSLETTER_TIMEZONE", "America/New_York")
	t.Setenv("ALERT_MAX_CONCURRENT", "4")
	t.Setenv("WORKER_JOB_TIMEOUT", "10m")
	t.Setenv("WORKER_HEALTH_PORT", "9300")

	cfg := LoadConfigFromEnv(nil, nil)

	assert.Equal(t, "30 7 * * 5", cfg.NewsletterSchedule)
	assert.Equal(t, "0 */6 * * *", cfg.ImportSchedule)
	assert.Equal(t, "America/New_York", cfg.Location().String())
	assert.Equal(t, 4, cfg.AlertMaxConcurrent)
	assert.Equal(t, 10*time.Minute, cfg.JobTimeout)
	assert.Equal(t, 9300, cfg.HealthPort)
}

func TestLoadConfigFromEnv_InvalidFallsBack(t *testing.T) {
	t.Setenv("NEWSLETTER_CRON", "every monday")
	t.Setenv("NEWSLETTER_TIMEZONE", "Nowhere/Land")
	t.Setenv("WORKER_HEALTH_PORT", "80")

	metrics := config.NewConfigMetrics("worker_fallback_test", prometheus.NewRegistry())
	cfg := LoadConfigFromEnv(nil, metrics)

	def := DefaultConfig()
	assert.Equal(t, def.NewsletterSchedule, cfg.NewsletterSchedule)
	assert.Equal(t, def.Timezone, cfg.Timezone)
	assert.Equal(t, def.HealthPort, cfg.HealthPort)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbackActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("timezone")))
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ImportSchedule = "bad"
	cfg.AlertMaxConcurrent = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import schedule")
	assert.Contains(t, err.Error(), "alert max concurrent")
}

/* ───────── ジョブ ───────── */

func newTestMetrics() *Metrics {
	return NewMetrics(promauto.With(prometheus.NewRegistry()))
}

func TestJob_RunSuccess(t *testing.T) {
	m := newTestMetrics()
	j := NewJob("weekly_newsletter", "0 9 * * 1", time.Minute, m, func(ctx context.Context) (int, error) {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return 12, nil
	})

	assert.True(t, j.Run(context.Background()))

	st := j.Status()
	assert.Equal(t, 12, st.LastItems)
	assert.Empty(t, st.LastError)
	assert.False(t, st.LastSuccess.IsZero())
	assert.False(t, st.Running)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("weekly_newsletter", "success")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.ItemsTotal.WithLabelValues("weekly_newsletter")))
}

func TestJob_RunFailureSanitizesError(t *testing.T) {
	m := newTestMetrics()
	j := NewJob("import", "", time.Minute, m, func(context.Context) (int, error) {
		return 0, errors.New("dial postgres://admin:secret@db:5432 failed")
	})

	j.Run(context.Background())

	st := j.Status()
	assert.NotContains(t, st.LastError, "secret")
	assert.True(t, st.LastSuccess.IsZero())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("import", "failure")))
}

func TestJob_SkipsOverlappingRun(t *testing.T) {
	m := newTestMetrics()
	release := make(chan struct{})
	started := make(chan struct{})
	j := NewJob("slow", "", time.Minute, m, func(context.Context) (int, error) {
		close(started)
		<-release
		return 0, nil
	})

	done := make(chan struct{})
	go func() {
		j.Run(context.Background())
		close(done)
	}()
	<-started

	assert.False(t, j.Run(context.Background()))
	assert.True(t, j.Status().Running)

	close(release)
	<-done
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("slow", "skipped")))
}

func TestNewScheduler(t *testing.T) {
	cfg := DefaultConfig()
	weekly := NewJob("weekly_newsletter", cfg.NewsletterSchedule, time.Minute, nil, func(context.Context) (int, error) { return 0, nil })
	disabled := NewJob("import", "", time.Minute, nil, func(context.Context) (int, error) { return 0, nil })

	c, err := NewScheduler(context.Background(), &cfg, weekly, disabled)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	bad := NewJob("bad", "nope", time.Minute, nil, nil)
	_, err = NewScheduler(context.Background(), &cfg, bad)
	assert.Error(t, err)
}

/* ───────── ヘルスサーバー ───────── */

type stubChannels []notify.ChannelHealthStatus

func (s stubChannels) ChannelHealth() []notify.ChannelHealthStatus { return s }

func TestHealthServer_Endpoints(t *testing.T) {
	job := NewJob("weekly_newsletter", "0 9 * * 1", time.Minute, nil, func(context.Context) (int, error) { return 3, nil })
	job.Run(context.Background())

	h := NewHealthServer(":0", []*Job{job}, stubChannels{{Name: "discord", Enabled: true}})
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()

	h.SetReady(true)
	resp, err = http.Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/health/jobs")
	require.NoError(t, err)
	var jobs jobsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&jobs))
	resp.Body.Close()
	require.Len(t, jobs.Jobs, 1)
	assert.Equal(t, 3, jobs.Jobs[0].LastItems)

	resp, err = http.Get(srv.URL + "/health/channels")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthServer_ChannelBreakerOpen(t *testing.T) {
	h := NewHealthServer(":0", nil, stubChannels{{Name: "slack", Enabled: true, CircuitBreakerOpen: true}})
	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/channels", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body channelsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Healthy)
}
