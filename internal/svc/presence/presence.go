package presence

import (
	"context"
	"time"

	"github.com/colabhq/presence/data/model"
	"github.com/colabhq/presence/internal/svc/prometheus"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// batchSize caps the cardinality of a single "$in" store lookup. Larger
// inputs are split into consecutive chunks of at most this many ids.
const batchSize = 100

type Instance interface {
	// ReportActivity upserts one record per unique id with the given
	// timestamp. A zero time means now. An empty id set is a silent no-op.
	ReportActivity(ctx context.Context, userIDs []string, at time.Time) error

	// IsOnline reports whether the user's last activity is fresher than the
	// disconnected delay. Users with no record are offline, not an error.
	IsOnline(ctx context.Context, userID string) (bool, error)

	// Statuses resolves the online flag for each id present in the store.
	// Ids with no record are absent from the result.
	Statuses(ctx context.Context, userIDs []string) ([]model.UserStatus, error)

	// Record returns the stored record for a user, with ok=false for users
	// who have never reported activity.
	Record(ctx context.Context, userID string) (model.PresenceRecord, bool, error)
}

type Options struct {
	Store      Store
	Prometheus prometheus.Instance

	// DisconnectedDelay is how long a user stays online after their last
	// observed activity. Every node of a deployment must agree on it.
	DisconnectedDelay time.Duration
}

func New(opt Options) Instance {
	return &inst{
		store:      opt.Store,
		prometheus: opt.Prometheus,
		delay:      opt.DisconnectedDelay,
		now:        time.Now,
	}
}

type inst struct {
	store      Store
	prometheus prometheus.Instance
	delay      time.Duration

	now func() time.Time
}

func (p *inst) ReportActivity(ctx context.Context, userIDs []string, at time.Time) error {
	if len(userIDs) == 0 {
		return nil
	}

	if at.IsZero() {
		at = p.now()
	}

	lastSeen := at.UnixMilli()

	seen := make(map[string]struct{}, len(userIDs))
	records := make([]model.PresenceRecord, 0, len(userIDs))

	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		records = append(records, model.PresenceRecord{
			UserID:   id,
			LastSeen: lastSeen,
		})
	}

	if err := p.store.UpsertMany(ctx, records); err != nil {
		return err
	}

	p.prometheus.ActivityReports().Add(float64(len(records)))

	zap.S().Debugw("presence, activity reported",
		"users", len(records),
	)

	return nil
}

func (p *inst) IsOnline(ctx context.Context, userID string) (bool, error) {
	rec, ok, err := p.Record(ctx, userID)
	if err != nil || !ok {
		return false, err
	}

	return p.stillConnected(p.now(), rec.LastSeen), nil
}

func (p *inst) Record(ctx context.Context, userID string) (model.PresenceRecord, bool, error) {
	rec, err := p.store.Find(ctx, userID)
	if err != nil {
		if err == ErrRecordNotFound {
			return model.PresenceRecord{}, false, nil
		}

		return model.PresenceRecord{}, false, err
	}

	return rec, true, nil
}

func (p *inst) Statuses(ctx context.Context, userIDs []string) ([]model.UserStatus, error) {
	start := p.now()

	p.prometheus.StatusQueries().Inc()
	defer func() {
		p.prometheus.QueryDurationSeconds().Observe(time.Since(start).Seconds())
	}()

	// One "now" per logical call: every record in the batch is judged
	// against the same instant, regardless of how long the chunked lookups
	// take. The threshold window is coarse enough for this to be safe.
	now := start

	var (
		statuses []model.UserStatus
		errs     error
	)

	for i := 0; i < len(userIDs); i += batchSize {
		chunk := userIDs[i:min(i+batchSize, len(userIDs))]

		records, err := p.store.FindMany(ctx, chunk)
		if err != nil {
			errs = multierror.Append(errs, err)

			continue
		}

		for _, rec := range records {
			statuses = append(statuses, model.UserStatus{
				UserID: rec.UserID,
				Online: p.stillConnected(now, rec.LastSeen),
			})
		}
	}

	return statuses, errs
}

// stillConnected is the single freshness rule shared by all status checks.
func (p *inst) stillConnected(now time.Time, lastSeen int64) bool {
	return now.UnixMilli()-lastSeen < p.delay.Milliseconds()
}

func min(a, b int) int {
	if a < b {
		return a
	}

	return b
}
