package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userCanvasRepository struct {
	db *gorm.DB
}

func NewUserCanvasRepository(db *gorm.DB) *userCanvasRepository {
	return &userCanvasRepository{db: db}
}

func (r *userCanvasRepository) Upsert(ctx context.Context, uc *domain.UserCanvas) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "canvas_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"scale", "x", "y"}),
		}).
		Create(uc).Error
}

func (r *userCanvasRepository) Get(ctx context.Context, userID, canvasID uuid.UUID) (*domain.UserCanvas, error) {
	var uc domain.UserCanvas
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND canvas_id = ?", userID, canvasID).
		First(&uc).Error
	if err != nil {
		return nil, err
	}
	return &uc, nil
}
