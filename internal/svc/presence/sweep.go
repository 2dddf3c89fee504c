package presence

import (
	"context"
	"time"

	"github.com/colabhq/presence/data/model"
	"github.com/colabhq/presence/internal/svc/events"
	"github.com/colabhq/presence/internal/svc/prometheus"
	"go.uber.org/zap"
)

type SweeperOptions struct {
	Store      Store
	Events     events.Instance
	Prometheus prometheus.Instance

	DisconnectedDelay time.Duration
	Interval          time.Duration
}

// NewSweeper starts the periodic job that demotes stale users to offline.
// Disconnect events never mutate state directly (a user may hold connections
// on other nodes), so this is the only path by which a user transitions to
// offline: each run picks up the records whose last_seen aged past the
// disconnected delay since the previous run and broadcasts the transition.
// Overlap between runs is tolerated; a duplicate offline broadcast is a
// no-op for consumers.
func NewSweeper(ctx context.Context, opt SweeperOptions) <-chan struct{} {
	done := make(chan struct{})

	ticker := time.NewTicker(opt.Interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep(ctx, opt)
			}
		}
	}()

	return done
}

func sweep(ctx context.Context, opt SweeperOptions) {
	now := time.Now()

	to := now.Add(-opt.DisconnectedDelay).UnixMilli()
	from := now.Add(-opt.DisconnectedDelay - opt.Interval).UnixMilli()

	records, err := opt.Store.FindLastSeenBetween(ctx, from, to)
	if err != nil {
		zap.S().Errorw("sweeper, failed to scan for stale records",
			"error", err,
		)

		return
	}

	opt.Prometheus.Sweeps().Inc()

	if len(records) == 0 {
		return
	}

	entries := make([]model.UserStatus, len(records))
	for i, rec := range records {
		entries[i] = model.UserStatus{
			UserID: rec.UserID,
			Online: false,
		}
	}

	if err := opt.Events.BroadcastOnline(ctx, entries); err != nil {
		// Best-effort: the next run re-evaluates freshness anyway
		zap.S().Warnw("sweeper, failed to broadcast offline transitions",
			"error", err,
			"entries", len(entries),
		)

		return
	}

	zap.S().Infow("sweeper, users marked offline",
		"users", len(entries),
	)
}
