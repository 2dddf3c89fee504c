package gateway

import (
	"context"
	"time"

	"github.com/colabhq/presence/data/model"
	"github.com/colabhq/presence/internal/global"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type OnlineGetRequest struct {
	Data []string `json:"data"`
}

type OnlineGetResponse struct {
	Data []model.UserStatus `json:"data"`
}

// Bind attaches the presence service to the connection gateway: timestamp
// users as they connect, announce the transition to all nodes, and serve
// online:get queries over the connection.
func Bind(gctx global.Context, gw Instance) {
	gw.OnUserConnected(func(ev UserEvent) {
		zap.S().Infow("gateway, user connected",
			"user_id", ev.UserID,
			"connection_id", ev.Connection.ID(),
		)

		// The store write and the broadcast are deliberately uncoupled: a
		// failed write still announces the user, the next sweep self-corrects.
		if err := gctx.Inst().Presence.ReportActivity(gctx, []string{ev.UserID}, time.Time{}); err != nil {
			zap.S().Errorw("gateway, failed to report activity",
				"error", err,
				"user_id", ev.UserID,
			)
		}

		if err := gctx.Inst().Events.BroadcastOnline(gctx, []model.UserStatus{{
			UserID: ev.UserID,
			Online: true,
		}}); err != nil {
			zap.S().Warnw("gateway, failed to broadcast online transition",
				"error", err,
				"user_id", ev.UserID,
			)
		}

		ev.Connection.RegisterHandler(KindOnlineGet, func(ctx context.Context, data []byte) ([]byte, error) {
			req := OnlineGetRequest{}
			if err := json.Unmarshal(data, &req); err != nil {
				return nil, err
			}

			statuses, err := gctx.Inst().Presence.Statuses(ctx, req.Data)
			if err != nil {
				return nil, err
			}

			return json.Marshal(OnlineGetResponse{Data: statuses})
		})
	})

	gw.OnUserDisconnected(func(ev UserEvent) {
		// No state change: the user may hold other connections on this or
		// other nodes. The sweeper owns the offline transition.
		zap.S().Infow("gateway, user disconnected",
			"user_id", ev.UserID,
		)
	})
}
