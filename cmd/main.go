package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/bugsnag/panicwrap"
	"github.com/colabhq/presence/internal/api/rest"
	"github.com/colabhq/presence/internal/configure"
	"github.com/colabhq/presence/internal/gateway"
	"github.com/colabhq/presence/internal/global"
	"github.com/colabhq/presence/internal/health"
	"github.com/colabhq/presence/internal/monitoring"
	"github.com/colabhq/presence/internal/svc/events"
	"github.com/colabhq/presence/internal/svc/mongo"
	"github.com/colabhq/presence/internal/svc/mq"
	"github.com/colabhq/presence/internal/svc/presence"
	"github.com/colabhq/presence/internal/svc/prometheus"
	"go.uber.org/zap"
)

var (
	Version = "development"
	Unix    = ""
	Time    = "unknown"
	User    = "unknown"
)

func init() {
	debug.SetGCPercent(2000)
	if i, err := strconv.Atoi(Unix); err == nil {
		Time = time.Unix(int64(i), 0).Format(time.RFC3339)
	}
}

func main() {
	config := configure.New()

	exitStatus, err := panicwrap.BasicWrap(func(s string) {
		zap.S().Errorw("panic detected",
			"panic", s,
		)
	})
	if err != nil {
		zap.S().Errorw("failed to setup panic handler",
			"error", err,
		)
		os.Exit(2)
	}

	if exitStatus >= 0 {
		os.Exit(exitStatus)
	}

	if !config.NoHeader {
		zap.S().Info("Presence Service")
		zap.S().Infof("Version: %s", Version)
		zap.S().Infof("build.Time: %s", Time)
		zap.S().Infof("build.User: %s", User)
	}

	zap.S().Debugf("MaxProcs: %d", runtime.GOMAXPROCS(0))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	gCtx, cancel := global.WithCancel(global.New(context.Background(), config))

	{
		ctx, cancel := global.WithTimeout(gCtx, time.Second*15)
		gCtx.Inst().Mongo, err = mongo.Setup(ctx, mongo.SetupOptions{
			URI:      config.Mongo.URI,
			Username: config.Mongo.Username,
			Password: config.Mongo.Password,
			DB:       config.Mongo.DB,
			Direct:   config.Mongo.Direct,
		})
		cancel()
		if err != nil {
			zap.S().Fatalw("failed to connect to mongo",
				"error", err,
			)
		}
	}

	{
		gCtx.Inst().MQ, err = mq.New(mq.Options{
			URL:  config.Nats.URL,
			Name: "presence",
		})
		if err != nil {
			zap.S().Fatalw("failed to connect to nats",
				"error", err,
			)
		}
	}

	{
		gCtx.Inst().Prometheus = prometheus.New(prometheus.Options{
			Labels: config.Monitoring.Labels.ToPrometheus(),
		})
	}

	{
		gCtx.Inst().Events = events.New(events.Options{
			MQ:            gCtx.Inst().MQ,
			Prometheus:    gCtx.Inst().Prometheus,
			SubjectPrefix: config.Nats.SubjectPrefix,
		})
	}

	var store presence.Store

	{
		ctx, cancel := global.WithTimeout(gCtx, time.Second*15)
		store = presence.NewMongoStore(ctx, gCtx.Inst().Mongo)
		cancel()

		gCtx.Inst().Presence = presence.New(presence.Options{
			Store:             store,
			Prometheus:        gCtx.Inst().Prometheus,
			DisconnectedDelay: time.Duration(config.Presence.DisconnectedDelay) * time.Millisecond,
		})
	}

	wg := sync.WaitGroup{}

	if gCtx.Config().Health.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-health.New(gCtx)
		}()
	}
	if gCtx.Config().Monitoring.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-monitoring.New(gCtx)
		}()
	}

	if gCtx.Config().Presence.SweepEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-presence.NewSweeper(gCtx, presence.SweeperOptions{
				Store:             store,
				Events:            gCtx.Inst().Events,
				Prometheus:        gCtx.Inst().Prometheus,
				DisconnectedDelay: time.Duration(config.Presence.DisconnectedDelay) * time.Millisecond,
				Interval:          config.Presence.SweepInterval,
			})
		}()
	}

	done := make(chan struct{})
	go func() {
		<-sig
		cancel()
		go func() {
			select {
			case <-time.After(time.Minute):
			case <-sig:
			}
			zap.S().Fatal("force shutdown")
		}()

		zap.S().Info("shutting down")

		wg.Wait()

		_ = gCtx.Inst().MQ.Drain()

		close(done)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := rest.New(gCtx); err != nil {
			zap.S().Fatalw("rest failed",
				"error", err,
			)
		}
	}()

	gw := gateway.NewNats(gateway.NatsOptions{
		MQ:            gCtx.Inst().MQ,
		SubjectPrefix: "gateway",
	})

	gateway.Bind(gCtx, gw)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gw.Listen(gCtx); err != nil {
			zap.S().Fatalw("gateway failed",
				"error", err,
			)
		}
	}()

	zap.S().Info("running")

	<-done

	zap.S().Info("shutdown")
	os.Exit(0)
}
