package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/authprovider"
	"github.com/mino-dev/mino-web/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	id          uuid.UUID
	displayName string
	email       string
	firstName   string
	lastName    string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		id:          uuid.New(),
		displayName: fmt.Sprintf("testuser_%s", suffix),
		email:       fmt.Sprintf("test_%s@example.com", suffix),
	}
}

// WithID sets the user ID
func (b *UserBuilder) WithID(id uuid.UUID) *UserBuilder {
	b.id = id
	return b
}

// WithDisplayName sets the display name
func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.displayName = name
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithName sets first and last name
func (b *UserBuilder) WithName(first, last string) *UserBuilder {
	b.firstName = first
	b.lastName = last
	return b
}

// Build creates the user row in the database
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:          b.id,
		FirstName:   b.firstName,
		LastName:    b.lastName,
		DisplayName: b.displayName,
		Email:       b.email,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// BuildAndSignIn creates the user row, registers the matching identity with
// the fake auth provider, and returns the user plus a live session.
func (b *UserBuilder) BuildAndSignIn(t *testing.T, ts *TestServer) (*domain.User, *authprovider.Session) {
	t.Helper()

	user := b.Build(t, ts.DB.DB)
	session := ts.Provider.IssueSession(t, &authprovider.User{
		ID:    user.ID,
		Email: user.Email,
		UserMetadata: authprovider.Metadata{
			"name": user.DisplayName,
		},
	})
	return user, session
}

// ProjectBuilder creates test projects with a builder pattern
type ProjectBuilder struct {
	owner       *domain.User
	name        string
	description string
	tags        []string
}

// NewProjectBuilder creates a new ProjectBuilder with default values
func NewProjectBuilder() *ProjectBuilder {
	return &ProjectBuilder{
		name: fmt.Sprintf("project_%s", uuid.New().String()[:8]),
	}
}

// WithOwner sets the project owner
func (b *ProjectBuilder) WithOwner(user *domain.User) *ProjectBuilder {
	b.owner = user
	return b
}

// WithName sets the project name
func (b *ProjectBuilder) WithName(name string) *ProjectBuilder {
	b.name = name
	return b
}

// WithDescription sets the description
func (b *ProjectBuilder) WithDescription(description string) *ProjectBuilder {
	b.description = description
	return b
}

// WithTags sets the tags
func (b *ProjectBuilder) WithTags(tags ...string) *ProjectBuilder {
	b.tags = tags
	return b
}

// Build creates the project, its canvas, and a default branch in the database
func (b *ProjectBuilder) Build(t *testing.T, db *gorm.DB) *domain.Project {
	t.Helper()

	if b.owner == nil {
		b.owner = NewUserBuilder().Build(t, db)
	}

	tags := b.tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		t.Fatalf("failed to marshal tags: %v", err)
	}

	project := &domain.Project{
		ID:          uuid.New(),
		OwnerID:     b.owner.ID,
		Name:        b.name,
		Description: b.description,
		Tags:        datatypes.JSON(tagsJSON),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	canvas := &domain.Canvas{
		ID:        uuid.New(),
		ProjectID: project.ID,
	}
	if err := db.Create(canvas).Error; err != nil {
		t.Fatalf("failed to create canvas: %v", err)
	}

	branch := &domain.Branch{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Name:      "main",
		IsDefault: true,
		CreatedAt: time.Now(),
	}
	if err := db.Create(branch).Error; err != nil {
		t.Fatalf("failed to create branch: %v", err)
	}

	project.Canvas = canvas
	project.Branches = []domain.Branch{*branch}
	return project
}

// RPCCall posts an RPC procedure with the given input and bearer token.
// Pass an empty token for anonymous calls and nil input for input-less ones.
func (ts *TestServer) RPCCall(t *testing.T, procedure string, input any, accessToken string) *http.Response {
	t.Helper()

	var body *bytes.Buffer
	if input != nil {
		data, err := json.Marshal(input)
		if err != nil {
			t.Fatalf("failed to marshal input: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(http.MethodPost, ts.BaseURL()+"/api/trpc/"+procedure, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := ts.Client.Do(req)
	if err != nil {
		t.Fatalf("failed to call %s: %v", procedure, err)
	}
	return resp
}
