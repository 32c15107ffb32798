package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/domain"
	"gorm.io/gorm"
)

type branchRepository struct {
	db *gorm.DB
}

func NewBranchRepository(db *gorm.DB) *branchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) Create(ctx context.Context, branch *domain.Branch) error {
	return r.db.WithContext(ctx).Create(branch).Error
}

func (r *branchRepository) GetDefault(ctx context.Context, projectID uuid.UUID) (*domain.Branch, error) {
	var branch domain.Branch
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND is_default = true", projectID).
		First(&branch).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}
