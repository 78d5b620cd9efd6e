package intro

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/resilience/retry"
)

type recordingMetrics struct {
	words     []int
	truncated int
	providers []string
}

func (r *recordingMetrics) RecordWords(n int) { r.words = append(r.words, n) }
func (r *recordingMetrics) RecordTruncated()  { r.truncated++ }
func (r *recordingMetrics) RecordDuration(p string, _ time.Duration) {
	r.providers = append(r.providers, p)
}

func testConfig(baseURL string) Config {
	return Config{WordLimit: 10, Model: "test-model", MaxTokens: 100, Timeout: 5 * time.Second, BaseURL: baseURL}
}

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
}

func weekArticles() []*entity.Article {
	return []*entity.Article{
		{Title: "Chips get faster", Subtitle: "New fabs come online", Topic: "Hardware"},
		{Title: "Open models", Topic: "AI"},
	}
}

/* ───────── プロンプト ───────── */

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt(weekArticles(), 80)
	assert.Contains(t, p, "at most 80 words")
	assert.Contains(t, p, "- Chips get faster: New fabs come online [Hardware]")
	assert.Contains(t, p, "- Open models [AI]")
}

func TestFinish(t *testing.T) {
	m := &recordingMetrics{}
	out, err := finish("one two three four five six seven eight nine ten eleven twelve", 10, m)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "ten…"))
	assert.Equal(t, 1, m.truncated)
	assert.Equal(t, []int{10}, m.words)

	_, err = finish("   ", 10, m)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := testConfig("")
	assert.NoError(t, cfg.Validate())

	cfg.WordLimit = 5
	assert.Error(t, cfg.Validate())

	cfg = testConfig("")
	cfg.Model = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("INTRO_WORD_LIMIT", "60")
	t.Setenv("INTRO_MODEL", "")
	cfg, err := LoadConfig("fallback-model")
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.WordLimit)
	assert.Equal(t, "fallback-model", cfg.Model)

	t.Setenv("INTRO_WORD_LIMIT", "1000")
	_, err = LoadConfig("m")
	assert.Error(t, err)
}

/* ───────── Claude ───────── */

func TestClaude_WriteIntro(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"test-model",
			"content":[{"type":"text","text":"A busy week in chips and open models."}],
			"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":9}}`))
	}))
	defer srv.Close()

	c := NewClaude("test-key", testConfig(srv.URL))
	m := &recordingMetrics{}
	c.metrics = m

	got, err := c.WriteIntro(context.Background(), weekArticles())
	require.NoError(t, err)
	assert.Equal(t, "A busy week in chips and open models.", got)
	assert.Equal(t, []string{"claude"}, m.providers)
}

func TestClaude_WriteIntro_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	c := NewClaude("bad-key", testConfig(srv.URL))
	c.retryConfig = fastRetry()
	c.metrics = &recordingMetrics{}

	_, err := c.WriteIntro(context.Background(), weekArticles())
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

/* ───────── OpenAI ───────── */

func TestOpenAI_WriteIntro(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"test-model",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Welcome to this week's issue."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI("test-key", testConfig(srv.URL+"/v1"))
	o.metrics = &recordingMetrics{}

	got, err := o.WriteIntro(context.Background(), weekArticles())
	require.NoError(t, err)
	assert.Equal(t, "Welcome to this week's issue.", got)
}

func TestOpenAI_WriteIntro_ServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"Recovered."}}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI("test-key", testConfig(srv.URL+"/v1"))
	o.retryConfig = fastRetry()
	o.metrics = &recordingMetrics{}

	got, err := o.WriteIntro(context.Background(), weekArticles())
	require.NoError(t, err)
	assert.Equal(t, "Recovered.", got)
	assert.EqualValues(t, 2, calls.Load())
}

func TestOpenAI_WriteIntro_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	o := NewOpenAI("test-key", testConfig(srv.URL+"/v1"))
	o.metrics = &recordingMetrics{}

	_, err := o.WriteIntro(context.Background(), weekArticles())
	assert.Error(t, err)
}
