package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/domain"
	"gorm.io/gorm"
)

type canvasRepository struct {
	db *gorm.DB
}

func NewCanvasRepository(db *gorm.DB) *canvasRepository {
	return &canvasRepository{db: db}
}

func (r *canvasRepository) Create(ctx context.Context, canvas *domain.Canvas) error {
	return r.db.WithContext(ctx).Create(canvas).Error
}

func (r *canvasRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Canvas, error) {
	var canvas domain.Canvas
	err := r.db.WithContext(ctx).
		Preload("Frames").
		First(&canvas, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &canvas, nil
}

func (r *canvasRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID) (*domain.Canvas, error) {
	var canvas domain.Canvas
	err := r.db.WithContext(ctx).
		Preload("Frames").
		First(&canvas, "project_id = ?", projectID).Error
	if err != nil {
		return nil, err
	}
	return &canvas, nil
}
