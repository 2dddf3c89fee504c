package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/colabhq/presence/data/model"
	"github.com/colabhq/presence/internal/configure"
	"github.com/colabhq/presence/internal/global"
	"github.com/colabhq/presence/internal/testutil"
)

type fakeGateway struct {
	onConnect    []func(ev UserEvent)
	onDisconnect []func(ev UserEvent)
}

func (g *fakeGateway) OnUserConnected(fn func(ev UserEvent)) {
	g.onConnect = append(g.onConnect, fn)
}

func (g *fakeGateway) OnUserDisconnected(fn func(ev UserEvent)) {
	g.onDisconnect = append(g.onDisconnect, fn)
}

func (g *fakeGateway) connect(ev UserEvent) {
	for _, fn := range g.onConnect {
		fn(ev)
	}
}

func (g *fakeGateway) disconnect(ev UserEvent) {
	for _, fn := range g.onDisconnect {
		fn(ev)
	}
}

type fakeConnection struct {
	id       string
	handlers map[string]HandlerFunc
}

func newFakeConnection(id string) *fakeConnection {
	return &fakeConnection{id: id, handlers: map[string]HandlerFunc{}}
}

func (c *fakeConnection) ID() string {
	return c.id
}

func (c *fakeConnection) RegisterHandler(kind string, fn HandlerFunc) {
	c.handlers[kind] = fn
}

type fakePresence struct {
	reported [][]string
	statuses []model.UserStatus

	failReports bool
}

func (p *fakePresence) ReportActivity(ctx context.Context, userIDs []string, at time.Time) error {
	if p.failReports {
		return errors.New("store unavailable")
	}

	p.reported = append(p.reported, userIDs)

	return nil
}

func (p *fakePresence) IsOnline(ctx context.Context, userID string) (bool, error) {
	return false, nil
}

func (p *fakePresence) Statuses(ctx context.Context, userIDs []string) ([]model.UserStatus, error) {
	return p.statuses, nil
}

func (p *fakePresence) Record(ctx context.Context, userID string) (model.PresenceRecord, bool, error) {
	return model.PresenceRecord{}, false, nil
}

type fakeEvents struct {
	entries []model.UserStatus
}

func (e *fakeEvents) BroadcastOnline(ctx context.Context, entries []model.UserStatus) error {
	e.entries = append(e.entries, entries...)

	return nil
}

func (e *fakeEvents) OnOnline(fn func(entries []model.UserStatus)) error {
	return nil
}

func newTestContext(p *fakePresence, e *fakeEvents) global.Context {
	gctx := global.New(context.Background(), &configure.Config{})
	gctx.Inst().Presence = p
	gctx.Inst().Events = e

	return gctx
}

func TestBindConnect(t *testing.T) {
	t.Parallel()

	p := &fakePresence{statuses: []model.UserStatus{{UserID: "u2", Online: true}}}
	e := &fakeEvents{}
	gw := &fakeGateway{}

	Bind(newTestContext(p, e), gw)

	conn := newFakeConnection("c1")
	gw.connect(UserEvent{UserID: "u1", Connection: conn})

	testutil.Assert(t, 1, len(p.reported), "activity reported once")
	testutil.Assert(t, "u1", p.reported[0][0], "for the connecting user")

	testutil.Assert(t, 1, len(e.entries), "online transition broadcast")
	testutil.Assert(t, "u1", e.entries[0].UserID, "broadcast user")
	testutil.Assert(t, true, e.entries[0].Online, "broadcast online flag")

	handler, ok := conn.handlers[KindOnlineGet]
	testutil.Assert(t, true, ok, "online:get handler registered")

	resp, err := handler(context.Background(), []byte(`{"data":["u2"]}`))
	testutil.IsNil(t, err, "handler succeeds")

	out := OnlineGetResponse{}
	testutil.IsNil(t, json.Unmarshal(resp, &out), "valid response")
	testutil.Assert(t, 1, len(out.Data), "one status")
	testutil.Assert(t, "u2", out.Data[0].UserID, "status id")
	testutil.Assert(t, true, out.Data[0].Online, "status flag")
}

func TestBindConnectBroadcastsDespiteStoreFailure(t *testing.T) {
	t.Parallel()

	p := &fakePresence{failReports: true}
	e := &fakeEvents{}
	gw := &fakeGateway{}

	Bind(newTestContext(p, e), gw)

	gw.connect(UserEvent{UserID: "u1", Connection: newFakeConnection("c1")})

	testutil.Assert(t, 1, len(e.entries), "broadcast still happens")
}

func TestBindDisconnectMutatesNothing(t *testing.T) {
	t.Parallel()

	p := &fakePresence{}
	e := &fakeEvents{}
	gw := &fakeGateway{}

	Bind(newTestContext(p, e), gw)

	gw.disconnect(UserEvent{UserID: "u1", Connection: newFakeConnection("c1")})

	testutil.Assert(t, 0, len(p.reported), "no activity written")
	testutil.Assert(t, 0, len(e.entries), "no broadcast")
}
