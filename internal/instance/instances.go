package instance

import (
	"github.com/colabhq/presence/internal/svc/events"
	"github.com/colabhq/presence/internal/svc/mongo"
	"github.com/colabhq/presence/internal/svc/mq"
	"github.com/colabhq/presence/internal/svc/presence"
	"github.com/colabhq/presence/internal/svc/prometheus"
)

type Instances struct {
	Mongo      mongo.Instance
	MQ         mq.Instance
	Prometheus prometheus.Instance
	Events     events.Instance
	Presence   presence.Instance
}
