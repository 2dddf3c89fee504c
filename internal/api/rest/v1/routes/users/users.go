package users

import (
	"github.com/colabhq/presence/internal/api/rest/rest"
	"github.com/colabhq/presence/internal/global"
)

type Route struct {
	Ctx global.Context
}

func New(gCtx global.Context) rest.Route {
	return &Route{gCtx}
}

func (r *Route) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/users",
		Method: rest.GET,
		Children: []rest.Route{
			newPresenceReadRoute(r.Ctx),
			newPresenceWriteRoute(r.Ctx),
		},
	}
}

func (r *Route) Handler(ctx *rest.Ctx) rest.APIError {
	return rest.ErrInvalidRequest("user id is required")
}
