package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Project struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID     uuid.UUID      `json:"ownerId" gorm:"type:uuid;not null;index"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	Tags        datatypes.JSON `json:"tags"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`

	// Preview image
	PreviewImgURL string `json:"previewImgUrl"`

	Canvas   *Canvas  `json:"canvas,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Branches []Branch `json:"branches,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Branch struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID   uuid.UUID `json:"projectId" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	IsDefault   bool      `json:"isDefault" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"createdAt"`

	// Git
	GitBranch    string `json:"gitBranch"`
	GitCommitSHA string `json:"gitCommitSha"`
	GitRepoURL   string `json:"gitRepoUrl"`

	// Sandbox
	SandboxURL string `json:"sandboxUrl"`

	Frames []Frame `json:"frames,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
