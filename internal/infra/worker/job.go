package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"byte-highlight/internal/handler/http/respond"
)

// JobFunc runs one scheduled job and reports how many items it handled.
type JobFunc func(ctx context.Context) (int, error)

// JobStatus is the last known state of a job.
type JobStatus struct {
	Name        string    `json:"name"`
	Schedule    string    `json:"schedule"`
	Running     bool      `json:"running"`
	LastRun     time.Time `json:"last_run,omitempty"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	LastItems   int       `json:"last_items"`
}

// Job wraps a JobFunc with a timeout, an overlap guard, metrics and logging.
type Job struct {
	name     string
	schedule string
	fn       JobFunc
	timeout  time.Duration
	metrics  *Metrics
	now      func() time.Time

	running atomic.Bool
	mu      sync.Mutex
	status  JobStatus
}

// NewJob creates a job. metrics may be nil.
func NewJob(name, schedule string, timeout time.Duration, metrics *Metrics, fn JobFunc) *Job {
	return &Job{
		name:     name,
		schedule: schedule,
		fn:       fn,
		timeout:  timeout,
		metrics:  metrics,
		now:      time.Now,
		status:   JobStatus{Name: name, Schedule: schedule},
	}
}

// Name returns the job name.
func (j *Job) Name() string { return j.name }

// Run executes the job once. A run that starts while the previous one is
// still in progress is skipped and returns false.
func (j *Job) Run(ctx context.Context) bool {
	if !j.running.CompareAndSwap(false, true) {
		slog.Warn("job skipped: previous run still in progress", slog.String("job", j.name))
		j.record("skipped")
		return false
	}
	defer j.running.Store(false)

	start := j.now()
	j.record("started")
	slog.Info("job started", slog.String("job", j.name))

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	items, err := j.fn(ctx)
	duration := j.now().Sub(start)
	if j.metrics != nil {
		j.metrics.recordDuration(j.name, duration.Seconds())
	}

	j.mu.Lock()
	j.status.LastRun = start
	j.status.LastItems = items
	if err != nil {
		j.status.LastError = respond.SanitizeError(err)
	} else {
		j.status.LastError = ""
		j.status.LastSuccess = j.now()
	}
	j.mu.Unlock()

	if err != nil {
		// 機密情報をマスクしてログ出力
		slog.Error("job failed",
			slog.String("job", j.name),
			slog.Duration("duration", duration),
			slog.String("error", respond.SanitizeError(err)))
		j.record("failure")
		return true
	}

	j.record("success")
	if j.metrics != nil {
		j.metrics.recordItems(j.name, items)
		j.metrics.recordSuccess(j.name)
	}
	slog.Info("job completed",
		slog.String("job", j.name),
		slog.Int("items", items),
		slog.Duration("duration", duration))
	return true
}

// Status returns a snapshot of the job state.
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	s := j.status
	s.Running = j.running.Load()
	return s
}

func (j *Job) record(status string) {
	if j.metrics != nil {
		j.metrics.recordRun(j.name, status)
	}
}
