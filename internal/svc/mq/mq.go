package mq

import (
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Instance is the cross-node message transport. Both the presence
// broadcaster and the connection-gateway adapter publish and subscribe
// through it.
type Instance interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, fn nats.MsgHandler) (*nats.Subscription, error)
	Connected() bool
	Drain() error
}

type Options struct {
	URL  string
	Name string
}

func New(opt Options) (Instance, error) {
	nc, err := nats.Connect(opt.URL,
		nats.Name(opt.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second*2),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			zap.S().Warnw("nats, disconnected",
				"error", err,
			)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			zap.S().Infow("nats, reconnected",
				"url", nc.ConnectedUrl(),
			)
		}),
	)
	if err != nil {
		return nil, err
	}

	zap.S().Infow("nats, connected",
		"url", nc.ConnectedUrl(),
	)

	return &inst{nc: nc}, nil
}

type inst struct {
	nc *nats.Conn
}

func (i *inst) Publish(subject string, data []byte) error {
	return i.nc.Publish(subject, data)
}

func (i *inst) Subscribe(subject string, fn nats.MsgHandler) (*nats.Subscription, error) {
	return i.nc.Subscribe(subject, fn)
}

func (i *inst) Connected() bool {
	return i.nc.IsConnected()
}

func (i *inst) Drain() error {
	return i.nc.Drain()
}
