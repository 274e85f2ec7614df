package worker

import (
	"context"
	"log/slog"
	"time"
)

// Refresher runs one full snapshot refresh.
type Refresher interface {
	RefreshAll(ctx context.Context) error
}

// Poller drives periodic snapshot refreshes against the wallet backend.
type Poller struct {
	refresher Refresher
	interval  time.Duration
}

func NewPoller(refresher Refresher, interval time.Duration) *Poller {
	return &Poller{
		refresher: refresher,
		interval:  interval,
	}
}

// Run refreshes immediately, then on every tick until ctx is done.
// A failed refresh is logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Poller started", "interval", p.interval.String())

	if err := p.refresher.RefreshAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial refresh failed", "error", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Poller stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := p.refresher.RefreshAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Scheduled refresh failed", "error", err)
			}
		}
	}
}
