package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installExporter(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	shutdown := Init(1, sdktrace.WithSyncer(exporter))
	t.Cleanup(func() {
		_ = shutdown(context.Background())
		otel.SetTracerProvider(sdktrace.NewTracerProvider())
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())
	})
	return exporter
}

func attr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

/* ───────── ミドルウェア ───────── */

func TestMiddleware_NamesSpanByRoute(t *testing.T) {
	exporter := installExporter(t)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/articles/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	Middleware(mux).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/42", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/articles/{id}", spans[0].Name)

	v, ok := attr(spans[0].Attributes, "http.path")
	require.True(t, ok)
	assert.Equal(t, "/api/articles/42", v.AsString())
	v, ok = attr(spans[0].Attributes, "http.status_code")
	require.True(t, ok)
	assert.EqualValues(t, 200, v.AsInt64())

	assert.Len(t, rec.Header().Get("X-Trace-Id"), 32)
}

func TestMiddleware_ContinuesIncomingTrace(t *testing.T) {
	exporter := installExporter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	Middleware(http.NotFoundHandler()).ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
}

func TestMiddleware_ErrorStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantError bool
	}{
		{"5xx はエラー", http.StatusInternalServerError, true},
		{"4xx はエラーではない", http.StatusNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter := installExporter(t)
			h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(tt.status) })

			Middleware(h).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			_, hasErr := attr(spans[0].Attributes, "error")
			assert.Equal(t, tt.wantError, hasErr)
			if tt.wantError {
				assert.Equal(t, codes.Error, spans[0].Status.Code)
			}
		})
	}
}

/* ───────── ヘルパー ───────── */

func TestStartEnd(t *testing.T) {
	exporter := installExporter(t)

	ctx, span := Start(context.Background(), "newsletter.dispatch", attribute.Int("recipients", 3))
	assert.NotEmpty(t, TraceID(ctx))
	End(span, errors.New("provider down"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Len(t, spans[0].Events, 1)
}

func TestTraceID_Empty(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}

func TestInit_ClampsRatio(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	shutdown := Init(-3, sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, span := Start(context.Background(), "dropped")
	span.End()

	assert.Empty(t, exporter.GetSpans())
}
