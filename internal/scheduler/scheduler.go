package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/crucial707/blog/internal/metrics"
	"github.com/robfig/cron/v3"
)

// Off disables the scheduler when used as the schedule spec.
const Off = "off"

// Publisher publishes drafts whose scheduled time has passed.
type Publisher interface {
	PublishDue(ctx context.Context, now time.Time) (int, error)
}

// Start adds a job that publishes due drafts on spec (a cron expression or
// descriptor such as "@every 1m") and starts the cron. Stop the returned cron
// on shutdown. It returns nil, nil when spec is Off or empty.
func Start(spec string, p Publisher) (*cron.Cron, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.EqualFold(spec, Off) {
		slog.Info("scheduler: disabled")
		return nil, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() { RunOnce(context.Background(), p, time.Now()) }); err != nil {
		return nil, fmt.Errorf("scheduler: invalid schedule %q: %w", spec, err)
	}

	// Catch up on anything that came due while the server was down.
	RunOnce(context.Background(), p, time.Now())
	c.Start()
	slog.Info("scheduler: started", "schedule", spec)
	return c, nil
}

// RunOnce publishes every draft due at now and returns how many were published.
func RunOnce(ctx context.Context, p Publisher, now time.Time) int {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := p.PublishDue(ctx, now.UTC())
	if err != nil {
		slog.Error("scheduler: publish due articles", "error", err)
		return 0
	}
	if n > 0 {
		metrics.AddScheduledPublished(n)
		slog.Info("scheduler: published scheduled articles", "count", n)
	}
	return n
}
