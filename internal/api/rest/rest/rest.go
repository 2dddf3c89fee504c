package rest

import (
	"fmt"

	"github.com/valyala/fasthttp"
)

type APIMethod string

const (
	GET    APIMethod = fasthttp.MethodGet
	POST   APIMethod = fasthttp.MethodPost
	PUT    APIMethod = fasthttp.MethodPut
	PATCH  APIMethod = fasthttp.MethodPatch
	DELETE APIMethod = fasthttp.MethodDelete
)

type HttpStatusCode int

const (
	OK        HttpStatusCode = fasthttp.StatusOK
	Created   HttpStatusCode = fasthttp.StatusCreated
	NoContent HttpStatusCode = fasthttp.StatusNoContent

	BadRequest          HttpStatusCode = fasthttp.StatusBadRequest
	NotFound            HttpStatusCode = fasthttp.StatusNotFound
	InternalServerError HttpStatusCode = fasthttp.StatusInternalServerError
)

// Route is one node of the route tree. Children URIs are relative to their
// parent's.
type Route interface {
	Config() RouteConfig
	Handler(ctx *Ctx) APIError
}

type RouteConfig struct {
	URI      string
	Method   APIMethod
	Children []Route
}

type APIError interface {
	error
	Message() string
	StatusCode() HttpStatusCode
}

type apiError struct {
	status  HttpStatusCode
	message string
}

func (e *apiError) Error() string {
	return e.message
}

func (e *apiError) Message() string {
	return e.message
}

func (e *apiError) StatusCode() HttpStatusCode {
	return e.status
}

func NewAPIError(status HttpStatusCode, format string, a ...interface{}) APIError {
	return &apiError{
		status:  status,
		message: fmt.Sprintf(format, a...),
	}
}

func ErrInvalidRequest(format string, a ...interface{}) APIError {
	return NewAPIError(BadRequest, format, a...)
}

func ErrInternalServerError() APIError {
	return NewAPIError(InternalServerError, "Internal Server Error")
}
