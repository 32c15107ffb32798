package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/domain"
	"github.com/mino-dev/mino-web/internal/repository"
	"gorm.io/gorm"
)

var ErrFrameURLRequired = errors.New("frame url is required")

type FrameService struct {
	frameRepo   repository.FrameRepository
	canvasRepo  repository.CanvasRepository
	projectRepo repository.ProjectRepository
	branchRepo  repository.BranchRepository
}

func NewFrameService(frameRepo repository.FrameRepository, canvasRepo repository.CanvasRepository, projectRepo repository.ProjectRepository, branchRepo repository.BranchRepository) *FrameService {
	return &FrameService{
		frameRepo:   frameRepo,
		canvasRepo:  canvasRepo,
		projectRepo: projectRepo,
		branchRepo:  branchRepo,
	}
}

type CreateFrameInput struct {
	CanvasID uuid.UUID  `json:"canvasId"`
	BranchID *uuid.UUID `json:"branchId"`
	URL      string     `json:"url"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
}

type UpdateFrameInput struct {
	ID     uuid.UUID `json:"id"`
	URL    *string   `json:"url"`
	X      *float64  `json:"x"`
	Y      *float64  `json:"y"`
	Width  *float64  `json:"width"`
	Height *float64  `json:"height"`
}

func (s *FrameService) List(ctx context.Context, userID, canvasID uuid.UUID) ([]*domain.Frame, error) {
	if _, err := s.checkCanvasAccess(ctx, userID, canvasID); err != nil {
		return nil, err
	}
	return s.frameRepo.GetByCanvasID(ctx, canvasID)
}

func (s *FrameService) Create(ctx context.Context, userID uuid.UUID, input CreateFrameInput) (*domain.Frame, error) {
	if input.URL == "" {
		return nil, ErrFrameURLRequired
	}
	canvas, err := s.checkCanvasAccess(ctx, userID, input.CanvasID)
	if err != nil {
		return nil, err
	}

	branchID := input.BranchID
	if branchID == nil {
		branch, err := s.branchRepo.GetDefault(ctx, canvas.ProjectID)
		if err == nil {
			branchID = &branch.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	frame := &domain.Frame{
		ID:       uuid.New(),
		CanvasID: input.CanvasID,
		BranchID: branchID,
		URL:      input.URL,
		X:        input.X,
		Y:        input.Y,
		Width:    input.Width,
		Height:   input.Height,
	}
	if err := s.frameRepo.Create(ctx, frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func (s *FrameService) Update(ctx context.Context, userID uuid.UUID, input UpdateFrameInput) (*domain.Frame, error) {
	frame, err := s.ownedFrame(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.URL != nil {
		if *input.URL == "" {
			return nil, ErrFrameURLRequired
		}
		frame.URL = *input.URL
	}
	if input.X != nil {
		frame.X = *input.X
	}
	if input.Y != nil {
		frame.Y = *input.Y
	}
	if input.Width != nil {
		frame.Width = *input.Width
	}
	if input.Height != nil {
		frame.Height = *input.Height
	}

	if err := s.frameRepo.Update(ctx, frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func (s *FrameService) Delete(ctx context.Context, userID, frameID uuid.UUID) error {
	if _, err := s.ownedFrame(ctx, userID, frameID); err != nil {
		return err
	}
	return s.frameRepo.Delete(ctx, frameID)
}

func (s *FrameService) ownedFrame(ctx context.Context, userID, frameID uuid.UUID) (*domain.Frame, error) {
	frame, err := s.frameRepo.GetByID(ctx, frameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFrameNotFound
		}
		return nil, err
	}
	if _, err := s.checkCanvasAccess(ctx, userID, frame.CanvasID); err != nil {
		return nil, err
	}
	return frame, nil
}

func (s *FrameService) checkCanvasAccess(ctx context.Context, userID, canvasID uuid.UUID) (*domain.Canvas, error) {
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
