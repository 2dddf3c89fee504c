package users

import (
	"time"

	"github.com/colabhq/presence/data/model"
	"github.com/colabhq/presence/internal/api/rest/rest"
	"github.com/colabhq/presence/internal/global"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type presenceWriteRoute struct {
	gctx global.Context
}

func newPresenceWriteRoute(gctx global.Context) rest.Route {
	return &presenceWriteRoute{
		gctx: gctx,
	}
}

func (r *presenceWriteRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/{user.id}/presence",
		Method: rest.POST,
	}
}

// Reports activity for a user on behalf of another platform tier, e.g. a
// backend worker that observed the user doing something meaningful.
func (r *presenceWriteRoute) Handler(ctx *rest.Ctx) rest.APIError {
	userID, err := ctx.UserValue("user.id").String()
	if err != nil {
		return rest.ErrInvalidRequest("user id is required")
	}

	body := presenceWriteBody{}
	if len(ctx.Request.Body()) > 0 {
		if err := json.Unmarshal(ctx.Request.Body(), &body); err != nil {
			return rest.ErrInvalidRequest("invalid body: %s", err.Error())
		}
	}

	at := time.Time{}
	if body.Timestamp > 0 {
		at = time.UnixMilli(body.Timestamp)
	}

	if reportErr := r.gctx.Inst().Presence.ReportActivity(ctx, []string{userID}, at); reportErr != nil {
		ctx.Log().Errorw("failed to report activity",
			"error", reportErr,
			"user_id", userID,
		)

		return rest.ErrInternalServerError()
	}

	rec, _, recErr := r.gctx.Inst().Presence.Record(ctx, userID)
	if recErr != nil {
		return rest.ErrInternalServerError()
	}

	return ctx.JSON(rest.OK, model.PresenceModel{
		UserID:   userID,
		Online:   true,
		LastSeen: rec.LastSeen,
	})
}

type presenceWriteBody struct {
	// Optional explicit activity timestamp in unix millis; zero means now
	Timestamp int64 `json:"timestamp"`
}
