package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/domain"
	"github.com/mino-dev/mino-web/internal/repository"
	"gorm.io/gorm"
)

type CanvasService struct {
	canvasRepo     repository.CanvasRepository
	projectRepo    repository.ProjectRepository
	userCanvasRepo repository.UserCanvasRepository
}

func NewCanvasService(canvasRepo repository.CanvasRepository, projectRepo repository.ProjectRepository, userCanvasRepo repository.UserCanvasRepository) *CanvasService {
	return &CanvasService{
		canvasRepo:     canvasRepo,
		projectRepo:    projectRepo,
		userCanvasRepo: userCanvasRepo,
	}
}

func (s *CanvasService) GetByProject(ctx context.Context, userID, projectID uuid.UUID) (*domain.Canvas, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	if project.OwnerID != userID {
		return nil, domain.ErrForbidden
	}

	canvas, err := s.canvasRepo.GetByProjectID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCanvasNotFound
		}
		return nil, err
	}
	return canvas, nil
}

type UpdateViewportInput struct {
	CanvasID uuid.UUID `json:"canvasId"`
	Scale    float64   `json:"scale"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
}

// UpdateViewport stores the caller's viewport on the canvas, keyed on
// (user, canvas). Idempotent per key; repeated writes overwrite.
func (s *CanvasService) UpdateViewport(ctx context.Context, userID uuid.UUID, input UpdateViewportInput) (*domain.UserCanvas, error) {
	if _, err := s.ownedCanvas(ctx, userID, input.CanvasID); err != nil {
		return nil, err
	}

	uc := &domain.UserCanvas{
		UserID:   userID,
		CanvasID: input.CanvasID,
		Scale:    input.Scale,
		X:        input.X,
		Y:        input.Y,
	}
	if err := s.userCanvasRepo.Upsert(ctx, uc); err != nil {
		return nil, err
	}
	return uc, nil
}

func (s *CanvasService) ownedCanvas(ctx context.Context, userID, canvasID uuid.UUID) (*domain.Canvas, error) {
	canvas, err := s.canvasRepo.GetByID(ctx, canvasID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCanvasNotFound
		}
		return nil, err
	}
	project, err := s.projectRepo.GetByID(ctx, canvas.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	if project.OwnerID != userID {
		return nil, domain.ErrForbidden
	}
	return canvas, nil
}
