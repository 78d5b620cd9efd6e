package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		inbound  string
		keepSame bool
	}{
		{name: "generates when missing", inbound: ""},
		{name: "reuses well-formed id", inbound: "req-123.abc", keepSame: true},
		{name: "replaces oversized id", inbound: strings.Repeat("a", 65)},
		{name: "replaces id with header injection", inbound: "abc\r\nX-Evil: 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen = FromContext(r.Context())
			}))
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.inbound != "" {
				r.Header[RequestIDHeader] = []string{tt.inbound}
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
			if tt.keepSame {
				assert.Equal(t, tt.inbound, seen)
				return
			}
			_, err := uuid.Parse(seen)
			assert.NoError(t, err)
		})
	}
}

func TestFromContext_Empty(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, FromContext(r.Context()))
}
