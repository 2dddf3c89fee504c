package events

import (
	"context"

	"github.com/colabhq/presence/data/model"
	"github.com/colabhq/presence/internal/svc/mq"
	"github.com/colabhq/presence/internal/svc/prometheus"
	jsoniter "github.com/json-iterator/go"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Instance propagates online-state transitions to every node of the
// deployment so any node can answer presence queries for any user.
type Instance interface {
	// BroadcastOnline is fire-and-forget: a publish failure is surfaced but
	// never rolls back the store write that preceded it.
	BroadcastOnline(ctx context.Context, entries []model.UserStatus) error

	// OnOnline delivers transitions published by any node, including this
	// one, to the given handler.
	OnOnline(fn func(entries []model.UserStatus)) error
}

type Options struct {
	MQ         mq.Instance
	Prometheus prometheus.Instance

	// SubjectPrefix namespaces the transport subjects, e.g. "presence".
	SubjectPrefix string
}

func New(opt Options) Instance {
	return &inst{
		mq:         opt.MQ,
		prometheus: opt.Prometheus,
		subject:    opt.SubjectPrefix + ".online",
	}
}

type inst struct {
	mq         mq.Instance
	prometheus prometheus.Instance
	subject    string
}

type onlinePayload struct {
	Entries []model.UserStatus `json:"entries"`
}

func (i *inst) BroadcastOnline(ctx context.Context, entries []model.UserStatus) error {
	if len(entries) == 0 {
		return nil
	}

	data, err := json.Marshal(onlinePayload{Entries: entries})
	if err != nil {
		return err
	}

	if err := i.mq.Publish(i.subject, data); err != nil {
		return err
	}

	i.prometheus.BroadcastsOnline().Add(float64(len(entries)))

	zap.S().Debugw("events, broadcast online",
		"entries", len(entries),
	)

	return nil
}

func (i *inst) OnOnline(fn func(entries []model.UserStatus)) error {
	_, err := i.mq.Subscribe(i.subject, func(msg *nats.Msg) {
		payload := onlinePayload{}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			zap.S().Warnw("events, invalid online payload",
				"error", err,
			)

			return
		}

		fn(payload.Entries)
	})

	return err
}
