package health

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/colabhq/presence/internal/configure"
	"github.com/colabhq/presence/internal/global"
	"github.com/colabhq/presence/internal/testutil"
	"github.com/nats-io/nats.go"
)

type fakeMQ struct {
	connected bool
}

func (f *fakeMQ) Publish(string, []byte) error { return nil }
func (f *fakeMQ) Subscribe(string, nats.MsgHandler) (*nats.Subscription, error) {
	return nil, nil
}
func (f *fakeMQ) Connected() bool { return f.connected }
func (f *fakeMQ) Drain() error    { return nil }

func TestHealth(t *testing.T) {
	t.Parallel()

	config := &configure.Config{}
	config.Health.Enabled = true
	config.Health.Bind = "127.0.1.1:3000"

	gCtx, cancel := global.WithCancel(global.New(context.Background(), config))

	done := New(gCtx)

	time.Sleep(time.Millisecond * 50)

	resp, err := http.DefaultClient.Get("http://127.0.1.1:3000")
	testutil.IsNil(t, err, "No error")
	_ = resp.Body.Close()
	testutil.Assert(t, http.StatusOK, resp.StatusCode, "response code")

	cancel()

	<-done
}

func TestHealthReportsDisconnectedMQ(t *testing.T) {
	t.Parallel()

	config := &configure.Config{}
	config.Health.Enabled = true
	config.Health.Bind = "127.0.1.1:3001"

	gCtx, cancel := global.WithCancel(global.New(context.Background(), config))
	gCtx.Inst().MQ = &fakeMQ{connected: false}

	done := New(gCtx)

	time.Sleep(time.Millisecond * 50)

	resp, err := http.DefaultClient.Get("http://127.0.1.1:3001")
	testutil.IsNil(t, err, "No error")
	_ = resp.Body.Close()
	testutil.Assert(t, http.StatusInternalServerError, resp.StatusCode, "response code")

	cancel()

	<-done
}
