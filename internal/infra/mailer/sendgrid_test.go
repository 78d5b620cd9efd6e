package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"byte-highlight/internal/usecase/newsletter"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*SendGrid, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewSendGrid(Config{
		APIKey:    "SG.test",
		FromEmail: "news@bytehighlight.example",
		FromName:  "The Byte Highlight",
		BaseURL:   srv.URL,
		Timeout:   2 * time.Second,
	})
	return c, srv
}

func testMessage() newsletter.Message {
	return newsletter.Message{
		Recipients: []newsletter.Recipient{
			{Email: "a@example.com", Substitutions: map[string]string{"-unsubscribe_url-": "https://x/u?a"}},
			{Email: "b@example.com"},
		},
		Subject: "Weekly",
		HTML:    "<p>Hello</p>",
		Text:    "Hello",
	}
}

/* ───────── ペイロード ───────── */

func TestSendGrid_Send_Payload(t *testing.T) {
	var got sendRequest
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer SG.test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	})

	require.NoError(t, c.Send(context.Background(), testMessage()))

	require.Len(t, got.Personalizations, 2)
	assert.Equal(t, "a@example.com", got.Personalizations[0].To[0].Email)
	assert.Equal(t, "https://x/u?a", got.Personalizations[0].Substitutions["-unsubscribe_url-"])
	assert.Equal(t, "news@bytehighlight.example", got.From.Email)
	require.Len(t, got.Content, 2)
	assert.Equal(t, "text/plain", got.Content[0].Type)
	assert.Equal(t, "text/html", got.Content[1].Type)
	assert.Nil(t, got.MailSettings)
}

func TestSendGrid_Send_SandboxFlag(t *testing.T) {
	var got sendRequest
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	})

	msg := testMessage()
	msg.Sandbox = true
	require.NoError(t, c.Send(context.Background(), msg))
	require.NotNil(t, got.MailSettings)
	assert.True(t, got.MailSettings.SandboxMode.Enable)
}

/* ───────── エラー分類 ───────── */

func TestSendGrid_Send_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":[{"message":"The from address does not match a verified Sender Identity."}]}`))
	})

	err := c.Send(context.Background(), testMessage())
	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusForbidden, ce.StatusCode)
	assert.Contains(t, err.Error(), "does not match a verified Sender Identity")
	assert.EqualValues(t, 1, calls.Load())
}

func TestSendGrid_Send_ServerErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("oops"))
	})

	err := c.Send(context.Background(), testMessage())
	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Contains(t, se.Message, "oops")
	assert.EqualValues(t, 1, calls.Load())
}

func TestSendGrid_Send_RateLimit(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	err := c.Send(context.Background(), testMessage())
	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 7*time.Second, rl.RetryAfter)
}

func TestSendGrid_Send_CircuitOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 3; i++ {
		_ = c.Send(context.Background(), testMessage())
	}
	err := c.Send(context.Background(), testMessage())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.EqualValues(t, 3, calls.Load())
}

func TestSendGrid_Send_ClientErrorsDoNotOpenCircuit(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	for i := 0; i < 5; i++ {
		var ce *ClientError
		require.ErrorAs(t, c.Send(context.Background(), testMessage()), &ce)
	}
}

func TestSendGrid_Send_NoRecipients(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("provider must not be called")
	})
	assert.Error(t, c.Send(context.Background(), newsletter.Message{Subject: "x"}))
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "a; b", errorText([]byte(`{"errors":[{"message":"a"},{"message":"b"}]}`)))
	assert.Equal(t, "plain", errorText([]byte(" plain ")))
}
