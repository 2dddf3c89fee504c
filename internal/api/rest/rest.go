package rest

import (
	"fmt"
	"net"
	"time"

	"github.com/colabhq/presence/internal/api/rest/rest"
	"github.com/colabhq/presence/internal/api/rest/v1/routes"
	"github.com/colabhq/presence/internal/global"
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type HttpServer struct {
	listener net.Listener
	router   *router.Router
}

func New(gctx global.Context) error {
	var err error

	port := gctx.Config().Http.Ports.REST
	if port == 0 {
		port = 80
	}

	s := HttpServer{}

	s.listener, err = net.Listen("tcp", fmt.Sprintf("%s:%d", gctx.Config().Http.Addr, port))
	if err != nil {
		return err
	}

	s.router = router.New()

	s.addRoute("", routes.New(gctx))

	srv := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			start := time.Now()

			defer func() {
				if err := recover(); err != nil {
					zap.S().Errorw("panic in rest request handler",
						"panic", err,
						"status", ctx.Response.StatusCode(),
						"duration", int(time.Since(start)/time.Millisecond),
						"method", string(ctx.Method()),
						"path", string(ctx.Path()),
					)
				} else {
					mills := time.Since(start) / time.Millisecond
					status := ctx.Response.StatusCode()

					logFn := zap.S().Debugw
					if mills >= 500 {
						logFn = zap.S().Infow
					}
					if status >= 500 {
						logFn = zap.S().Errorw
					}

					logFn("rest request",
						"status", status,
						"duration", int(mills),
						"method", string(ctx.Method()),
						"path", string(ctx.Path()),
					)
				}
			}()

			ctx.Response.Header.Set("X-Node-Name", gctx.Config().K8S.NodeName)
			ctx.Response.Header.Set("X-Pod-Name", gctx.Config().K8S.PodName)

			ctx.Response.Header.Set("Content-Type", "application/json") // default to JSON

			s.router.Handler(ctx)
		},
		ReadTimeout:      time.Second * 30,
		IdleTimeout:      time.Second * 10,
		CloseOnShutdown:  true,
		DisableKeepalive: false,
	}

	// Gracefully exit when the global context is canceled
	go func() {
		<-gctx.Done()

		_ = srv.Shutdown()
	}()

	return srv.Serve(s.listener)
}

// addRoute registers a route node and its children, concatenating URIs.
func (s *HttpServer) addRoute(prefix string, r rest.Route) {
	cfg := r.Config()
	uri := prefix + cfg.URI

	s.router.Handle(string(cfg.Method), uri, func(ctx *fasthttp.RequestCtx) {
		rctx := &rest.Ctx{RequestCtx: ctx}

		if err := r.Handler(rctx); err != nil {
			resp := errorResponse{
				Status:    int(err.StatusCode()),
				Error:     err.Message(),
				ErrorCode: int(err.StatusCode()),
			}

			if jsonErr := rctx.JSON(err.StatusCode(), resp); jsonErr != nil {
				zap.S().Errorw("failed to write error response",
					"error", jsonErr,
				)
			}
		}
	})

	for _, child := range cfg.Children {
		s.addRoute(uri, child)
	}
}

type errorResponse struct {
	Status    int    `json:"status"`
	Error     string `json:"error"`
	ErrorCode int    `json:"error_code"`
}
