package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"byte-highlight/internal/usecase/notify"
)

// ChannelReporter exposes alert channel health.
type ChannelReporter interface {
	ChannelHealth() []notify.ChannelHealthStatus
}

// HealthServer serves liveness, readiness, job status, alert channel health
// and Prometheus metrics for the worker process.
type HealthServer struct {
	addr     string
	isReady  atomic.Bool
	jobs     []*Job
	channels ChannelReporter
	server   *http.Server
}

type healthResponse struct {
	Status string `json:"status"`
}

type jobsResponse struct {
	Jobs []JobStatus `json:"jobs"`
}

type channelsResponse struct {
	Healthy  bool                         `json:"healthy"`
	Channels []notify.ChannelHealthStatus `json:"channels"`
}

// NewHealthServer starts not ready. channels may be nil.
func NewHealthServer(addr string, jobs []*Job, channels ChannelReporter) *HealthServer {
	return &HealthServer{addr: addr, jobs: jobs, channels: channels}
}

// Handler returns the server's routes.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleLiveness)
	mux.HandleFunc("GET /health/ready", h.handleReadiness)
	mux.HandleFunc("GET /health/jobs", h.handleJobs)
	mux.HandleFunc("GET /health/channels", h.handleChannels)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// Start serves until ctx is cancelled and then shuts down gracefully.
func (h *HealthServer) Start(ctx context.Context) error {
	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("health server starting", slog.String("addr", h.addr))
		errChan <- h.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			slog.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		slog.Info("health server stopped")
		return http.ErrServerClosed
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

// SetReady flips the readiness probe.
func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	slog.Info("health server readiness changed", slog.Bool("ready", ready))
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if h.isReady.Load() {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
}

func (h *HealthServer) handleJobs(w http.ResponseWriter, _ *http.Request) {
	out := jobsResponse{Jobs: make([]JobStatus, 0, len(h.jobs))}
	for _, j := range h.jobs {
		out.Jobs = append(out.Jobs, j.Status())
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HealthServer) handleChannels(w http.ResponseWriter, _ *http.Request) {
	out := channelsResponse{Healthy: true, Channels: []notify.ChannelHealthStatus{}}
	if h.channels != nil {
		out.Channels = h.channels.ChannelHealth()
	}
	for _, c := range out.Channels {
		if c.Enabled && c.CircuitBreakerOpen {
			out.Healthy = false
		}
	}
	status := http.StatusOK
	if !out.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode health response", slog.Any("error", err))
	}
}
