package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/colabhq/presence/internal/svc/mq"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NatsGateway adapts the platform's connection tier, which publishes
// connection lifecycle events over the message transport, to the Instance
// contract. Request handlers registered on a connection are served via
// request/reply on a per-connection subject.
type NatsGateway struct {
	mq     mq.Instance
	prefix string

	mtx           sync.Mutex
	onConnect     []func(ev UserEvent)
	onDisconnect  []func(ev UserEvent)
	subscriptions map[string][]*nats.Subscription // connection id -> handler subs
}

type NatsOptions struct {
	MQ mq.Instance

	// SubjectPrefix namespaces the gateway subjects, e.g. "gateway".
	SubjectPrefix string
}

func NewNats(opt NatsOptions) *NatsGateway {
	return &NatsGateway{
		mq:            opt.MQ,
		prefix:        opt.SubjectPrefix,
		subscriptions: map[string][]*nats.Subscription{},
	}
}

func (g *NatsGateway) OnUserConnected(fn func(ev UserEvent)) {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	g.onConnect = append(g.onConnect, fn)
}

func (g *NatsGateway) OnUserDisconnected(fn func(ev UserEvent)) {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	g.onDisconnect = append(g.onDisconnect, fn)
}

type connectionEvent struct {
	UserID       string `json:"user_id"`
	ConnectionID string `json:"connection_id"`
}

// Listen subscribes to the connection lifecycle subjects and blocks until
// the context is canceled. Bind handlers before calling it.
func (g *NatsGateway) Listen(ctx context.Context) error {
	connSub, err := g.mq.Subscribe(g.prefix+".user.connected", func(msg *nats.Msg) {
		ev := connectionEvent{}
		if err := json.Unmarshal(msg.Data, &ev); err != nil || ev.UserID == "" || ev.ConnectionID == "" {
			zap.S().Warnw("gateway, invalid connect event",
				"error", err,
			)

			return
		}

		conn := &natsConnection{gw: g, ctx: ctx, id: ev.ConnectionID}

		for _, fn := range g.handlers(&g.onConnect) {
			fn(UserEvent{UserID: ev.UserID, Connection: conn})
		}
	})
	if err != nil {
		return err
	}

	defer func() {
		_ = connSub.Unsubscribe()
	}()

	discSub, err := g.mq.Subscribe(g.prefix+".user.disconnected", func(msg *nats.Msg) {
		ev := connectionEvent{}
		if err := json.Unmarshal(msg.Data, &ev); err != nil || ev.UserID == "" || ev.ConnectionID == "" {
			zap.S().Warnw("gateway, invalid disconnect event",
				"error", err,
			)

			return
		}

		g.teardown(ev.ConnectionID)

		conn := &natsConnection{gw: g, ctx: ctx, id: ev.ConnectionID}

		for _, fn := range g.handlers(&g.onDisconnect) {
			fn(UserEvent{UserID: ev.UserID, Connection: conn})
		}
	})
	if err != nil {
		return err
	}

	defer func() {
		_ = discSub.Unsubscribe()
	}()

	zap.S().Infow("gateway, listening",
		"prefix", g.prefix,
	)

	<-ctx.Done()

	return nil
}

func (g *NatsGateway) handlers(src *[]func(ev UserEvent)) []func(ev UserEvent) {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	return *src
}

// teardown drops the request handlers of a connection that went away.
func (g *NatsGateway) teardown(connectionID string) {
	g.mtx.Lock()
	subs := g.subscriptions[connectionID]
	delete(g.subscriptions, connectionID)
	g.mtx.Unlock()

	for _, sub := range subs {
		_ = sub.Unsubscribe()
	}
}

func (g *NatsGateway) track(connectionID string, sub *nats.Subscription) {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	g.subscriptions[connectionID] = append(g.subscriptions[connectionID], sub)
}

type natsConnection struct {
	gw  *NatsGateway
	ctx context.Context
	id  string
}

func (c *natsConnection) ID() string {
	return c.id
}

func (c *natsConnection) RegisterHandler(kind string, fn HandlerFunc) {
	subject := fmt.Sprintf("%s.conn.%s.%s", c.gw.prefix, c.id, kind)

	sub, err := c.gw.mq.Subscribe(subject, func(msg *nats.Msg) {
		resp, err := fn(c.ctx, msg.Data)
		if err != nil {
			zap.S().Errorw("gateway, request handler failed",
				"error", err,
				"kind", kind,
				"connection_id", c.id,
			)

			return
		}

		if err := msg.Respond(resp); err != nil {
			zap.S().Warnw("gateway, failed to respond",
				"error", err,
				"kind", kind,
				"connection_id", c.id,
			)
		}
	})
	if err != nil {
		zap.S().Errorw("gateway, failed to register handler",
			"error", err,
			"kind", kind,
			"connection_id", c.id,
		)

		return
	}

	c.gw.track(c.id, sub)
}
