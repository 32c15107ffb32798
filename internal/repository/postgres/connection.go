package postgres

import (
	"github.com/mino-dev/mino-web/internal/domain"
	"github.com/mino-dev/mino-web/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Project{},
		&domain.Canvas{},
		&domain.Branch{},
		&domain.Frame{},
		&domain.UserCanvas{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:       NewUserRepository(db),
		Project:    NewProjectRepository(db),
		Canvas:     NewCanvasRepository(db),
		Frame:      NewFrameRepository(db),
		Branch:     NewBranchRepository(db),
		UserCanvas: NewUserCanvasRepository(db),
	}
}
