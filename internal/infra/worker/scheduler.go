package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// NewScheduler registers every job that has a schedule on a cron evaluated
// in loc. Jobs run with ctx as their parent context.
func NewScheduler(ctx context.Context, loc Locator, jobs ...*Job) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(loc.Location()))
	for _, j := range jobs {
		if j.schedule == "" {
			slog.Info("job disabled: no schedule", slog.String("job", j.name))
			continue
		}
		job := j
		if _, err := c.AddFunc(job.schedule, func() { job.Run(ctx) }); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", job.name, err)
		}
		slog.Info("job scheduled",
			slog.String("job", job.name),
			slog.String("schedule", job.schedule),
			slog.String("timezone", loc.Location().String()))
	}
	return c, nil
}

// Locator supplies the scheduling time zone.
type Locator interface {
	Location() *time.Location
}
