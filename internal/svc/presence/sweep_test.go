package presence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/colabhq/presence/data/model"
	"github.com/colabhq/presence/internal/svc/prometheus"
	"github.com/colabhq/presence/internal/testutil"
)

type captureEvents struct {
	mtx     sync.Mutex
	entries []model.UserStatus
}

func (e *captureEvents) BroadcastOnline(ctx context.Context, entries []model.UserStatus) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.entries = append(e.entries, entries...)

	return nil
}

func (e *captureEvents) OnOnline(fn func(entries []model.UserStatus)) error {
	return nil
}

func TestSweepBroadcastsAgedRecords(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	ev := &captureEvents{}

	interval := time.Second * 20
	now := time.Now()

	// Aged past the delay within the last sweep window
	store.records["stale"] = model.PresenceRecord{
		UserID:   "stale",
		LastSeen: now.Add(-testDelay - interval/2).UnixMilli(),
	}
	// Still fresh
	store.records["fresh"] = model.PresenceRecord{
		UserID:   "fresh",
		LastSeen: now.UnixMilli(),
	}
	// Aged long before the window; already handled by an earlier run
	store.records["ancient"] = model.PresenceRecord{
		UserID:   "ancient",
		LastSeen: now.Add(-testDelay * 10).UnixMilli(),
	}

	sweep(context.Background(), SweeperOptions{
		Store:             store,
		Events:            ev,
		Prometheus:        prometheus.New(prometheus.Options{}),
		DisconnectedDelay: testDelay,
		Interval:          interval,
	})

	testutil.Assert(t, 1, len(ev.entries), "only the newly aged record broadcasts")
	testutil.Assert(t, "stale", ev.entries[0].UserID, "stale user")
	testutil.Assert(t, false, ev.entries[0].Online, "offline transition")
}

func TestSweepNothingToDo(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	ev := &captureEvents{}

	store.records["fresh"] = model.PresenceRecord{
		UserID:   "fresh",
		LastSeen: time.Now().UnixMilli(),
	}

	sweep(context.Background(), SweeperOptions{
		Store:             store,
		Events:            ev,
		Prometheus:        prometheus.New(prometheus.Options{}),
		DisconnectedDelay: testDelay,
		Interval:          time.Second * 20,
	})

	testutil.Assert(t, 0, len(ev.entries), "no broadcast for fresh records")
}
