package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Instance interface {
	Register(r prometheus.Registerer)
	ActivityReports() prometheus.Counter
	StatusQueries() prometheus.Counter
	QueryDurationSeconds() prometheus.Histogram
	BroadcastsOnline() prometheus.Counter
	Sweeps() prometheus.Counter
}

type Options struct {
	Labels prometheus.Labels
}

func New(o Options) Instance {
	return &mon{
		activityReports: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "presence_activity_reports_total",
			Help:        "Total activity reports written to the presence store",
			ConstLabels: o.Labels,
		}),
		statusQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "presence_queries_total",
			Help:        "Total presence status queries",
			ConstLabels: o.Labels,
		}),
		queryDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "presence_query_duration_seconds",
			Help:        "Duration of batched presence status queries",
			ConstLabels: o.Labels,
		}),
		broadcastsOnline: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "presence_broadcasts_total",
			Help:        "Total online-state broadcasts published",
			ConstLabels: o.Labels,
		}),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "presence_sweeps_total",
			Help:        "Total offline sweep runs",
			ConstLabels: o.Labels,
		}),
	}
}

type mon struct {
	activityReports      prometheus.Counter
	statusQueries        prometheus.Counter
	queryDurationSeconds prometheus.Histogram
	broadcastsOnline     prometheus.Counter
	sweeps               prometheus.Counter
}

func (m *mon) Register(r prometheus.Registerer) {
	r.MustRegister(
		m.activityReports,
		m.statusQueries,
		m.queryDurationSeconds,
		m.broadcastsOnline,
		m.sweeps,
	)
}

func (m *mon) ActivityReports() prometheus.Counter {
	return m.activityReports
}

func (m *mon) StatusQueries() prometheus.Counter {
	return m.statusQueries
}

func (m *mon) QueryDurationSeconds() prometheus.Histogram {
	return m.queryDurationSeconds
}

func (m *mon) BroadcastsOnline() prometheus.Counter {
	return m.broadcastsOnline
}

func (m *mon) Sweeps() prometheus.Counter {
	return m.sweeps
}
