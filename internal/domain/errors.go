package domain

import "errors"

// Auth errors
var (
	// ErrMissingSession means the request carries no usable session.
	// This is an expected condition, not a fault.
	ErrMissingSession = errors.New("auth session missing")
	// ErrProviderUnreachable means the auth provider itself failed
	// (network error, 5xx), as opposed to "not logged in".
	ErrProviderUnreachable = errors.New("auth provider unreachable")
	ErrUnauthorized        = errors.New("not authenticated")
	ErrForbidden           = errors.New("not allowed")
)

// Entity errors
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrCanvasNotFound  = errors.New("canvas not found")
	ErrFrameNotFound   = errors.New("frame not found")
)
