package domain

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the auth provider's identity: ID is the provider's user id,
// assigned at first login, never generated locally.
type User struct {
	ID                   uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	FirstName            string    `json:"firstName"`
	LastName             string    `json:"lastName"`
	DisplayName          string    `json:"displayName"`
	Email                string    `json:"email"`
	AvatarURL            string    `json:"avatarUrl"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
	StripeCustomerID     string    `json:"stripeCustomerId"`
	GithubInstallationID string    `json:"githubInstallationId"`
}

// UserCanvas stores a user's last viewport on a canvas.
type UserCanvas struct {
	UserID   uuid.UUID `json:"userId" gorm:"type:uuid;primaryKey"`
	CanvasID uuid.UUID `json:"canvasId" gorm:"type:uuid;primaryKey"`
	Scale    float64   `json:"scale" gorm:"not null"`
	X        float64   `json:"x" gorm:"not null"`
	Y        float64   `json:"y" gorm:"not null"`
}

func (UserCanvas) TableName() string {
	return "user_canvases"
}
