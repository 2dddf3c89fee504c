package presence

import (
	"strings"
	"time"

	"github.com/colabhq/presence/data/model"
	"github.com/colabhq/presence/internal/api/rest/rest"
	"github.com/colabhq/presence/internal/global"
	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Route struct {
	Ctx global.Context
}

func New(gCtx global.Context) rest.Route {
	return &Route{gCtx}
}

func (r *Route) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/presence",
		Method: rest.GET,
		Children: []rest.Route{
			newQueryRoute(r.Ctx),
		},
	}
}

func (r *Route) Handler(ctx *rest.Ctx) rest.APIError {
	return rest.ErrInvalidRequest("use POST /presence/query")
}

type queryRoute struct {
	gctx global.Context

	// Batched status lookups are the hot path for channel member lists; a
	// short-lived cache absorbs bursts of identical queries without making
	// staleness visible at the freshness window's resolution.
	cache *cache.Cache
}

func newQueryRoute(gctx global.Context) rest.Route {
	return &queryRoute{
		gctx:  gctx,
		cache: cache.New(time.Second*2, time.Second*30),
	}
}

func (r *queryRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/query",
		Method: rest.POST,
	}
}

func (r *queryRoute) Handler(ctx *rest.Ctx) rest.APIError {
	body := queryBody{}
	if err := json.Unmarshal(ctx.Request.Body(), &body); err != nil {
		return rest.ErrInvalidRequest("invalid body: %s", err.Error())
	}

	key := strings.Join(body.IDs, ",")

	if v, ok := r.cache.Get(key); ok {
		if statuses, ok := v.([]model.UserStatus); ok {
			return ctx.JSON(rest.OK, model.StatusListModel{Statuses: statuses})
		}
	}

	statuses, err := r.gctx.Inst().Presence.Statuses(ctx, body.IDs)
	if err != nil {
		ctx.Log().Errorw("failed to query presence statuses",
			"error", err,
			"ids", len(body.IDs),
		)

		return rest.ErrInternalServerError()
	}

	if statuses == nil {
		statuses = []model.UserStatus{}
	}

	r.cache.SetDefault(key, statuses)

	return ctx.JSON(rest.OK, model.StatusListModel{Statuses: statuses})
}

type queryBody struct {
	IDs []string `json:"ids"`
}
