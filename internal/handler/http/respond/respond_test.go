package respond

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Message(rec, http.StatusCreated, "Successfully subscribed to newsletter")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Successfully subscribed to newsletter","success":true}`, rec.Body.String())
}

func TestFail(t *testing.T) {
	rec := httptest.NewRecorder()
	FailWithDetail(rec, http.StatusForbidden, "Sender email not verified", "verify it first")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Sender email not verified","message":"verify it first"}`, rec.Body.String())
}

func TestSafeError(t *testing.T) {
	tests := []struct {
		name string
		code int
		err  error
		want string
	}{
		{name: "validation message exposed", code: http.StatusBadRequest, err: errors.New("title is required"), want: "title is required"},
		{name: "unknown client error hidden", code: http.StatusBadRequest, err: errors.New("pq: syntax error"), want: "internal server error"},
		{name: "server error hidden", code: http.StatusInternalServerError, err: errors.New("id not found"), want: "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			SafeError(rec, tt.code, tt.err)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}

	rec := httptest.NewRecorder()
	SafeError(rec, http.StatusBadRequest, nil)
	assert.Empty(t, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Email string `json:"email"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "a@b.co", v.Email)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","admin":true}`))
	assert.Error(t, DecodeJSON(r, &v))
}

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		leak    string
		contain string
	}{
		{name: "anthropic key", in: "auth failed for sk-ant-api03-abcdef123456", leak: "abcdef123456", contain: "sk-ant-****"},
		{name: "openai key", in: "bad key sk-abcdefghijklmnop", leak: "abcdefghijklmnop", contain: "sk-****"},
		{name: "sendgrid key", in: "using SG.abcdefghij.klmnopqrstuv", leak: "klmnopqrstuv", contain: "SG.****"},
		{name: "bearer token", in: "header Bearer eyJhbGciOi.payload.sig", leak: "eyJhbGciOi", contain: "Bearer ****"},
		{name: "dsn password", in: "dial postgres://admin:hunter2@db:5432/app", leak: "hunter2", contain: "admin:****@"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeError(errors.New(tt.in))
			assert.NotContains(t, got, tt.leak)
			assert.Contains(t, got, tt.contain)
		})
	}
	assert.Empty(t, SanitizeError(nil))
}
