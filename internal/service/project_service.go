package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/domain"
	"github.com/mino-dev/mino-web/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrProjectNameRequired = errors.New("project name is required")

type ProjectService struct {
	projectRepo repository.ProjectRepository
	canvasRepo  repository.CanvasRepository
	branchRepo  repository.BranchRepository
}

func NewProjectService(projectRepo repository.ProjectRepository, canvasRepo repository.CanvasRepository, branchRepo repository.BranchRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		canvasRepo:  canvasRepo,
		branchRepo:  branchRepo,
	}
}

type CreateProjectInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	SandboxURL  string   `json:"sandboxUrl"`
}

type UpdateProjectInput struct {
	ID            uuid.UUID `json:"id"`
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Tags          []string  `json:"tags"`
	PreviewImgURL *string   `json:"previewImgUrl"`
}

// Create provisions the project together with its canvas and default
// branch, so the editor always has a surface to open.
func (s *ProjectService) Create(ctx context.Context, ownerID uuid.UUID, input CreateProjectInput) (*domain.Project, error) {
	if input.Name == "" {
		return nil, ErrProjectNameRequired
	}

	tags, err := tagsJSON(input.Tags)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	project := &domain.Project{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        input.Name,
		Description: input.Description,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	canvas := &domain.Canvas{
		ID:        uuid.New(),
		ProjectID: project.ID,
	}
	if err := s.canvasRepo.Create(ctx, canvas); err != nil {
		return nil, err
	}

	branch := &domain.Branch{
		ID:         uuid.New(),
		ProjectID:  project.ID,
		Name:       "main",
		IsDefault:  true,
		SandboxURL: input.SandboxURL,
		CreatedAt:  now,
	}
	if err := s.branchRepo.Create(ctx, branch); err != nil {
		return nil, err
	}

	return s.projectRepo.GetByID(ctx, project.ID)
}

func (s *ProjectService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error) {
	return s.projectRepo.GetByOwnerID(ctx, userID)
}

func (s *ProjectService) Get(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
	return s.getOwned(ctx, userID, projectID)
}

func (s *ProjectService) Update(ctx context.Context, userID uuid.UUID, input UpdateProjectInput) (*domain.Project, error) {
	project, err := s.getOwned(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrProjectNameRequired
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Tags != nil {
		tags, err := tagsJSON(input.Tags)
		if err != nil {
			return nil, err
		}
		project.Tags = tags
	}
	if input.PreviewImgURL != nil {
		project.PreviewImgURL = *input.PreviewImgURL
	}
	project.UpdatedAt = time.Now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, projectID); err != nil {
		return err
	}
	return s.projectRepo.Delete(ctx, projectID)
}

func (s *ProjectService) getOwned(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
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
	return project, nil
}

func tagsJSON(tags []string) (datatypes.JSON, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
