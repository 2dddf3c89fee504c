package users

import (
	"github.com/colabhq/presence/data/model"
	"github.com/colabhq/presence/internal/api/rest/rest"
	"github.com/colabhq/presence/internal/global"
)

type presenceReadRoute struct {
	gctx global.Context
}

func newPresenceReadRoute(gctx global.Context) rest.Route {
	return &presenceReadRoute{
		gctx: gctx,
	}
}

func (r *presenceReadRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/{user.id}/presence",
		Method: rest.GET,
	}
}

func (r *presenceReadRoute) Handler(ctx *rest.Ctx) rest.APIError {
	userID, err := ctx.UserValue("user.id").String()
	if err != nil {
		return rest.ErrInvalidRequest("user id is required")
	}

	rec, ok, recErr := r.gctx.Inst().Presence.Record(ctx, userID)
	if recErr != nil {
		ctx.Log().Errorw("failed to read presence record",
			"error", recErr,
			"user_id", userID,
		)

		return rest.ErrInternalServerError()
	}

	// Users without a record are offline by definition, not missing
	if !ok {
		return ctx.JSON(rest.OK, model.PresenceModel{
			UserID: userID,
			Online: false,
		})
	}

	online, onlineErr := r.gctx.Inst().Presence.IsOnline(ctx, userID)
	if onlineErr != nil {
		return rest.ErrInternalServerError()
	}

	return ctx.JSON(rest.OK, model.PresenceModel{
		UserID:   userID,
		Online:   online,
		LastSeen: rec.LastSeen,
	})
}
