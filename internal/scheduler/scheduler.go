package scheduler

import (
	"context"
	"log/slog"

	"github.com/capsulehq/capsule-api/internal/metrics"
	"github.com/capsulehq/capsule-api/internal/repo"
	"github.com/robfig/cron/v3"
)

// Run starts a background scheduler that refreshes the openable-capsule gauge
// every hour: the number of capsules whose open_at has passed. Operators watch
// the gauge to see delivery backlog; it does not mutate anything.
func Run(capsules *repo.CapsuleRepo) *cron.Cron {
	refresh := func() {
		n, err := capsules.CountOpenable(context.Background())
		if err != nil {
			slog.Error("scheduler: count openable capsules", "error", err)
			return
		}
		metrics.CapsulesOpenable.Set(float64(n))
		slog.Info("scheduler: refreshed openable capsules", "count", n)
	}

	refresh()

	c := cron.New()
	if _, err := c.AddFunc("@hourly", refresh); err != nil {
		// The expression is a constant; this cannot fail at runtime.
		slog.Error("scheduler: add job", "error", err)
		return c
	}
	c.Start()
	return c
}
