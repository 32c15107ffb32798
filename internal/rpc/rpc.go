// Package rpc is the typed procedure layer behind /api/trpc. The wire
// format is tRPC-compatible JSON so the web client's generated callers
// keep working against this backend.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeBadRequest   Code = "BAD_REQUEST"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInternal     Code = "INTERNAL_SERVER_ERROR"
)

func (c Code) HTTPStatus() int {
	switch c {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed procedure failure. Clients switch on Code; Message is
// safe to show to end users.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// HandlerFunc is one procedure. rc is never nil; rc.User is nil for
// anonymous callers.
type HandlerFunc func(ctx context.Context, rc *Context, input json.RawMessage) (any, error)

// Router maps procedure names to handlers.
type Router struct {
	procedures map[string]HandlerFunc
}

func NewRouter() *Router {
	return &Router{procedures: make(map[string]HandlerFunc)}
}

// Handle registers a public procedure.
func (r *Router) Handle(name string, h HandlerFunc) {
	r.procedures[name] = h
}

// HandleProtected registers a procedure that rejects anonymous callers
// before the handler runs.
func (r *Router) HandleProtected(name string, h HandlerFunc) {
	r.procedures[name] = func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
		if rc.User == nil {
			return nil, NewError(CodeUnauthorized, "not authenticated")
		}
		return h(ctx, rc, input)
	}
}

func (r *Router) lookup(name string) (HandlerFunc, bool) {
	h, ok := r.procedures[name]
	return h, ok
}
