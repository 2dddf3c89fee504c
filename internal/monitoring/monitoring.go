package monitoring

import (
	"github.com/colabhq/presence/internal/global"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
)

// New starts the metrics exporter. All collectors are wrapped with the labels
// configured under monitoring.labels so multi-node deployments stay tellable
// apart in one scrape target.
func New(gCtx global.Context) <-chan struct{} {
	r := prometheus.NewRegistry()

	// Domain collectors already carry the configured labels as const labels,
	// so only the runtime collectors get wrapped here.
	prometheus.WrapRegistererWith(gCtx.Config().Monitoring.Labels.ToPrometheus(), r).MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gCtx.Inst().Prometheus.Register(r)

	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(r, promhttp.HandlerOpts{
		Registry:          r,
		EnableOpenMetrics: true,
	}))

	server := fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			if string(ctx.Path()) != "/metrics" {
				ctx.SetStatusCode(fasthttp.StatusNotFound)
				return
			}

			handler(ctx)
		},
		GetOnly:          true,
		DisableKeepalive: true,
	}

	done := make(chan struct{})

	go func() {
		defer close(done)
		zap.S().Infow("Monitoring enabled",
			"bind", gCtx.Config().Monitoring.Bind,
		)

		if err := server.ListenAndServe(gCtx.Config().Monitoring.Bind); err != nil {
			zap.S().Fatalw("failed to start monitoring bind",
				"error", err,
			)
		}
	}()

	go func() {
		<-gCtx.Done()

		_ = server.Shutdown()
	}()

	return done
}
