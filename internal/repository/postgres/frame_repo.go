package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/domain"
	"gorm.io/gorm"
)

type frameRepository struct {
	db *gorm.DB
}

func NewFrameRepository(db *gorm.DB) *frameRepository {
	return &frameRepository{db: db}
}

func (r *frameRepository) Create(ctx context.Context, frame *domain.Frame) error {
	return r.db.WithContext(ctx).Create(frame).Error
}

func (r *frameRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Frame, error) {
	var frame domain.Frame
	err := r.db.WithContext(ctx).First(&frame, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &frame, nil
}

func (r *frameRepository) GetByCanvasID(ctx context.Context, canvasID uuid.UUID) ([]*domain.Frame, error) {
	var frames []*domain.Frame
	err := r.db.WithContext(ctx).
		Where("canvas_id = ?", canvasID).
		Find(&frames).Error
	if err != nil {
		return nil, err
	}
	return frames, nil
}

func (r *frameRepository) Update(ctx context.Context, frame *domain.Frame) error {
	return r.db.WithContext(ctx).Save(frame).Error
}

func (r *frameRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Frame{}, "id = ?", id).Error
}
