package rest

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Ctx struct {
	*fasthttp.RequestCtx
}

func (c *Ctx) JSON(status HttpStatusCode, v interface{}) APIError {
	b, err := json.Marshal(v)
	if err != nil {
		c.SetStatusCode(InternalServerError)

		return ErrInternalServerError()
	}

	c.SetStatusCode(status)
	c.SetContentType("application/json")
	c.SetBody(b)

	return nil
}

func (c *Ctx) SetStatusCode(code HttpStatusCode) {
	c.RequestCtx.SetStatusCode(int(code))
}

func (c *Ctx) StatusCode() HttpStatusCode {
	return HttpStatusCode(c.RequestCtx.Response.StatusCode())
}

// UserValue returns a typed accessor for a path parameter.
func (c *Ctx) UserValue(key string) Value {
	return Value{c.RequestCtx.UserValue(key)}
}

func (c *Ctx) Log() *zap.SugaredLogger {
	return zap.S().Named("api/rest").With(
		"route", string(c.Path()),
	)
}

type Value struct {
	v interface{}
}

func (v Value) String() (string, error) {
	switch s := v.v.(type) {
	case string:
		return s, nil
	default:
		return "", ErrInvalidRequest("missing path parameter")
	}
}
