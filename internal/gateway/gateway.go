package gateway

import (
	"context"
)

// KindOnlineGet is the request kind a connected client uses to resolve the
// online status of a list of users.
const KindOnlineGet = "online:get"

// HandlerFunc answers a single request received on a connection. The
// returned bytes are sent back on the connection's reply channel.
type HandlerFunc func(ctx context.Context, data []byte) ([]byte, error)

// Connection is the capability handed out by the connection tier for one
// live client connection: an identity and the ability to attach
// request/response handlers by kind.
type Connection interface {
	ID() string
	RegisterHandler(kind string, fn HandlerFunc)
}

// UserEvent signals that a user gained or lost a connection on this node.
type UserEvent struct {
	UserID     string
	Connection Connection
}

// Instance is the connection-gateway contract. The gateway itself (socket
// handling, authentication) lives outside this service; only connect and
// disconnect signals and per-connection handler registration cross the
// boundary.
type Instance interface {
	OnUserConnected(fn func(ev UserEvent))
	OnUserDisconnected(fn func(ev UserEvent))
}
