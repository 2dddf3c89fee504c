package routes

import (
	"strconv"
	"time"

	"github.com/colabhq/presence/internal/api/rest/rest"
	"github.com/colabhq/presence/internal/api/rest/v1/routes/presence"
	"github.com/colabhq/presence/internal/api/rest/v1/routes/users"
	"github.com/colabhq/presence/internal/global"
)

var uptime = time.Now()

type Route struct {
	Ctx global.Context
}

func New(gCtx global.Context) rest.Route {
	return &Route{gCtx}
}

func (r *Route) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/v1",
		Method: rest.GET,
		Children: []rest.Route{
			users.New(r.Ctx),
			presence.New(r.Ctx),
		},
	}
}

func (r *Route) Handler(ctx *rest.Ctx) rest.APIError {
	return ctx.JSON(rest.OK, HealthResponse{
		Online: true,
		Uptime: strconv.Itoa(int(uptime.UnixMilli())),
	})
}

type HealthResponse struct {
	Online bool   `json:"online"`
	Uptime string `json:"uptime"`
}
