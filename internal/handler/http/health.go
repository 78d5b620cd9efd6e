package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"byte-highlight/internal/handler/http/respond"
	"byte-highlight/internal/usecase/notify"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the result of one health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ChannelReporter exposes alert channel health.
type ChannelReporter interface {
	ChannelHealth() []notify.ChannelHealthStatus
}

// HealthHandler reports database, e-mail provider and alert channel state.
// Only the database decides between 200 and 503; the other checks degrade.
type HealthHandler struct {
	DB              *sql.DB
	Version         string
	EmailConfigured bool
	// Channels is optional.
	Channels ChannelReporter
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckStatus{
		"database": h.checkDatabase(ctx),
		"email":    h.checkEmail(),
	}
	if h.Channels != nil {
		checks["alerts"] = h.checkChannels()
	}

	status, code := statusHealthy, http.StatusOK
	if checks["database"].Status == statusUnhealthy {
		status, code = statusUnhealthy, http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{Status: statusUnhealthy, Message: "not configured"}
	}
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: statusUnhealthy, Message: respond.SanitizeError(err)}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
	if stats.MaxOpenConnections > 0 {
		utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
		details["utilization_percent"] = utilization
		if utilization >= 80.0 {
			return CheckStatus{Status: statusDegraded, Message: "connection pool utilization above 80%", Details: details}
		}
	}
	return CheckStatus{Status: statusHealthy, Details: details}
}

func (h *HealthHandler) checkEmail() CheckStatus {
	if !h.EmailConfigured {
		return CheckStatus{Status: statusDegraded, Message: "Email service not configured"}
	}
	return CheckStatus{Status: statusHealthy}
}

func (h *HealthHandler) checkChannels() CheckStatus {
	channels := h.Channels.ChannelHealth()
	st := CheckStatus{Status: statusHealthy, Details: map[string]any{"channels": channels}}
	for _, c := range channels {
		if c.Enabled && c.CircuitBreakerOpen {
			st.Status = statusDegraded
			st.Message = "alert channel circuit breaker open: " + c.Name
		}
	}
	return st
}

// ReadyHandler answers 200 once the database is reachable.
type ReadyHandler struct {
	DB *sql.DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.DB.PingContext(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	writeText(w, "ready")
}

// LiveHandler always answers 200.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writeText(w, "alive")
}

func writeText(w http.ResponseWriter, s string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(s)); err != nil {
		slog.Warn("failed to write probe response", slog.Any("error", err))
	}
}
