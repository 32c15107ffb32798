package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/domain"
)

type UserRepository interface {
	// Upsert inserts the user or, on id conflict, overwrites the
	// name/email/avatar fields and bumps updated_at.
	Upsert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*domain.Project, error)
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CanvasRepository interface {
	Create(ctx context.Context, canvas *domain.Canvas) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Canvas, error)
	GetByProjectID(ctx context.Context, projectID uuid.UUID) (*domain.Canvas, error)
}

type FrameRepository interface {
	Create(ctx context.Context, frame *domain.Frame) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Frame, error)
	GetByCanvasID(ctx context.Context, canvasID uuid.UUID) ([]*domain.Frame, error)
	Update(ctx context.Context, frame *domain.Frame) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type BranchRepository interface {
	Create(ctx context.Context, branch *domain.Branch) error
	// GetDefault returns the branch flagged is_default for the project.
	GetDefault(ctx context.Context, projectID uuid.UUID) (*domain.Branch, error)
}

type UserCanvasRepository interface {
	// Upsert writes the viewport keyed on (user_id, canvas_id).
	Upsert(ctx context.Context, uc *domain.UserCanvas) error
	Get(ctx context.Context, userID, canvasID uuid.UUID) (*domain.UserCanvas, error)
}

type Repositories struct {
	User       UserRepository
	Project    ProjectRepository
	Canvas     CanvasRepository
	Frame      FrameRepository
	Branch     BranchRepository
	UserCanvas UserCanvasRepository
}
