package events

import (
	"context"
	"sync"
	"testing"

	"github.com/colabhq/presence/data/model"
	"github.com/colabhq/presence/internal/svc/prometheus"
	"github.com/colabhq/presence/internal/testutil"
	"github.com/nats-io/nats.go"
)

type fakeMQ struct {
	mtx      sync.Mutex
	subjects []string
	payloads [][]byte

	handlers map[string]nats.MsgHandler
}

func newFakeMQ() *fakeMQ {
	return &fakeMQ{handlers: map[string]nats.MsgHandler{}}
}

func (f *fakeMQ) Publish(subject string, data []byte) error {
	f.mtx.Lock()
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	fn := f.handlers[subject]
	f.mtx.Unlock()

	if fn != nil {
		fn(&nats.Msg{Subject: subject, Data: data})
	}

	return nil
}

func (f *fakeMQ) Subscribe(subject string, fn nats.MsgHandler) (*nats.Subscription, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.handlers[subject] = fn

	return nil, nil
}

func (f *fakeMQ) Connected() bool { return true }
func (f *fakeMQ) Drain() error    { return nil }

func TestBroadcastOnline(t *testing.T) {
	t.Parallel()

	mq := newFakeMQ()

	ev := New(Options{
		MQ:            mq,
		Prometheus:    prometheus.New(prometheus.Options{}),
		SubjectPrefix: "presence",
	})

	received := []model.UserStatus{}
	err := ev.OnOnline(func(entries []model.UserStatus) {
		received = append(received, entries...)
	})
	testutil.IsNil(t, err, "subscribe succeeds")

	err = ev.BroadcastOnline(context.Background(), []model.UserStatus{
		{UserID: "u1", Online: true},
		{UserID: "u2", Online: false},
	})
	testutil.IsNil(t, err, "publish succeeds")

	testutil.Assert(t, 1, len(mq.subjects), "one message published")
	testutil.Assert(t, "presence.online", mq.subjects[0], "subject")

	testutil.Assert(t, 2, len(received), "entries round-trip to subscribers")
	testutil.Assert(t, "u1", received[0].UserID, "first entry id")
	testutil.Assert(t, true, received[0].Online, "first entry online")
	testutil.Assert(t, false, received[1].Online, "second entry offline")
}

func TestBroadcastOnlineEmpty(t *testing.T) {
	t.Parallel()

	mq := newFakeMQ()

	ev := New(Options{
		MQ:            mq,
		Prometheus:    prometheus.New(prometheus.Options{}),
		SubjectPrefix: "presence",
	})

	err := ev.BroadcastOnline(context.Background(), nil)
	testutil.IsNil(t, err, "no error")
	testutil.Assert(t, 0, len(mq.subjects), "nothing published for an empty set")
}
