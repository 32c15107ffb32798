package domain

import "github.com/google/uuid"

// Canvas is the editing surface of a project; one per project.
type Canvas struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID uuid.UUID `json:"projectId" gorm:"type:uuid;not null;uniqueIndex"`

	Frames       []Frame      `json:"frames,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	UserCanvases []UserCanvas `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName keeps the singular table name the schema was created with.
func (Canvas) TableName() string {
	return "canvas"
}

type Frame struct {
	ID       uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CanvasID uuid.UUID  `json:"canvasId" gorm:"type:uuid;not null;index"`
	BranchID *uuid.UUID `json:"branchId" gorm:"type:uuid;index"`
	URL      string     `json:"url" gorm:"not null"`

	// Display data
	X      float64 `json:"x" gorm:"not null"`
	Y      float64 `json:"y" gorm:"not null"`
	Width  float64 `json:"width" gorm:"not null"`
	Height float64 `json:"height" gorm:"not null"`
}
