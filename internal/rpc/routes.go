package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/domain"
	"github.com/mino-dev/mino-web/internal/service"
)

// NewAppRouter registers the full procedure surface against the service
// layer.
func NewAppRouter(services *service.Services) *Router {
	r := NewRouter()

	r.HandleProtected("user.upsert", func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
		var in service.UpsertUserInput
		if err := decodeInput(input, &in); err != nil {
			return nil, err
		}
		user, err := services.User.Upsert(ctx, rc.User, in)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return user, nil
	})

	r.HandleProtected("user.get", func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
		user, err := services.User.Get(ctx, rc.User)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return user, nil
	})

	r.HandleProtected("project.list", func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
		projects, err := services.Project.List(ctx, rc.User.ID)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return projects, nil
	})

	r.HandleProtected("project.get", func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
		var in idInput
		if err := decodeInput(input, &in); err != nil {
			return nil, err
		}
		project, err := services.Project.Get(ctx, rc.User.ID, in.ID)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return project, nil
	})

	r.HandleProtected("project.create", func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
		var in service.CreateProjectInput
		if err := decodeInput(input, &in); err != nil {
			return nil, err
		}
		project, err := services.Project.Create(ctx, rc.User.ID, in)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return project, nil
	})

	r.HandleProtected("project.update", func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
		var in service.UpdateProjectInput
		if err := decodeInput(input, &in); err != nil {
			return nil, err
		}
		project, err := services.Project.Update(ctx, rc.User.ID, in)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return project, nil
	})

	r.HandleProtected("project.delete", func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
		var in idInput
		if err := decodeInput(input, &in); err != nil {
			return nil, err
		}
		if err := services.Project.Delete(ctx, rc.User.ID, in.ID); err != nil {
			return nil, mapServiceError(err)
		}
		return map[string]bool{"success": true}, nil
	})

	r.HandleProtected("canvas.get", func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
		var in struct {
			ProjectID uuid.UUID `json:"projectId"`
		}
		if err := decodeInput(input, &in); err != nil {
			return nil, err
		}
		canvas, err := services.Canvas.GetByProject(ctx, rc.User.ID, in.ProjectID)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return canvas, nil
	})

	r.HandleProtected("canvas.updateViewport", func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
		var in service.UpdateViewportInput
		if err := decodeInput(input, &in); err != nil {
			return nil, err
		}
		viewport, err := services.Canvas.UpdateViewport(ctx, rc.User.ID, in)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return viewport, nil
	})

	r.HandleProtected("frame.list", func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
		var in struct {
			CanvasID uuid.UUID `json:"canvasId"`
		}
		if err := decodeInput(input, &in); err != nil {
			return nil, err
		}
		frames, err := services.Frame.List(ctx, rc.User.ID, in.CanvasID)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return frames, nil
	})

	r.HandleProtected("frame.create", func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
		var in service.CreateFrameInput
		if err := decodeInput(input, &in); err != nil {
			return nil, err
		}
		frame, err := services.Frame.Create(ctx, rc.User.ID, in)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return frame, nil
	})

	r.HandleProtected("frame.update", func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
		var in service.UpdateFrameInput
		if err := decodeInput(input, &in); err != nil {
			return nil, err
		}
		frame, err := services.Frame.Update(ctx, rc.User.ID, in)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return frame, nil
	})

	r.HandleProtected("frame.delete", func(ctx context.Context, rc *Context, input json.RawMessage) (any, error) {
		var in idInput
		if err := decodeInput(input, &in); err != nil {
			return nil, err
		}
		if err := services.Frame.Delete(ctx, rc.User.ID, in.ID); err != nil {
			return nil, mapServiceError(err)
		}
		return map[string]bool{"success": true}, nil
	})

	return r
}

type idInput struct {
	ID uuid.UUID `json:"id"`
}

func decodeInput(input json.RawMessage, v any) error {
	if len(input) == 0 {
		return NewError(CodeBadRequest, "missing input")
	}
	if err := json.Unmarshal(input, v); err != nil {
		return NewError(CodeBadRequest, "invalid input")
	}
	return nil
}

// mapServiceError converts service/domain failures into typed RPC errors.
// Anything unrecognized is logged server-side and surfaced as a generic
// internal error; raw detail never reaches the client.
func mapServiceError(err error) *Error {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return NewError(CodeUnauthorized, "not authenticated")
	case errors.Is(err, domain.ErrForbidden):
		return NewError(CodeForbidden, "not allowed")
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrCanvasNotFound),
		errors.Is(err, domain.ErrFrameNotFound):
		return NewError(CodeNotFound, err.Error())
	case errors.Is(err, service.ErrProjectNameRequired),
		errors.Is(err, service.ErrFrameURLRequired):
		return NewError(CodeBadRequest, err.Error())
	default:
		log.Printf("ERROR [rpc] procedure failed: %v", err)
		return NewError(CodeInternal, "internal server error")
	}
}
