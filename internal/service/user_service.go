package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/authprovider"
	"github.com/mino-dev/mino-web/internal/billing"
	"github.com/mino-dev/mino-web/internal/domain"
	"github.com/mino-dev/mino-web/internal/repository"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo repository.UserRepository
	billing  billing.CustomerProvisioner // nil disables billing
}

func NewUserService(userRepo repository.UserRepository, provisioner billing.CustomerProvisioner) *UserService {
	return &UserService{
		userRepo: userRepo,
		billing:  provisioner,
	}
}

type UpsertUserInput struct {
	ID          uuid.UUID `json:"id"`
	FirstName   *string   `json:"firstName"`
	LastName    *string   `json:"lastName"`
	DisplayName *string   `json:"displayName"`
	Email       *string   `json:"email"`
	AvatarURL   *string   `json:"avatarUrl"`
}

// Upsert creates or updates the caller's own user record. The caller may
// only write the row whose id equals their authenticated identity; a
// mismatch fails before any database access. Missing input fields fall
// back to the provider's metadata.
//
// Returns (nil, nil) when the upsert unexpectedly yields no row; callers
// treat that as a soft failure.
func (s *UserService) Upsert(ctx context.Context, caller *authprovider.User, input UpsertUserInput) (*domain.User, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	if input.ID != caller.ID {
		return nil, domain.ErrForbidden
	}

	displayName, firstName, lastName := deriveNames(caller)
	now := time.Now()
	user := &domain.User{
		ID:          input.ID,
		FirstName:   valueOr(input.FirstName, firstName),
		LastName:    valueOr(input.LastName, lastName),
		DisplayName: valueOr(input.DisplayName, displayName),
		Email:       valueOr(input.Email, caller.Email),
		AvatarURL:   valueOr(input.AvatarURL, caller.UserMetadata.String("avatar_url")),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	existing, err := s.userRepo.GetByID(ctx, input.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Billing customers are provisioned once, at first insert. A billing
	// failure never blocks login.
	if existing == nil && s.billing != nil {
		customerID, err := s.billing.CreateCustomer(ctx, user.Email, user.DisplayName)
		if err != nil {
			log.Printf("ERROR [service.UserService.Upsert] creating billing customer for %s: %v", user.ID, err)
		} else {
			user.StripeCustomerID = customerID
		}
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, err
	}

	result, err := s.userRepo.GetByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}

// Get returns the caller's own user record, or nil when it does not exist yet.
func (s *UserService) Get(ctx context.Context, caller *authprovider.User) (*domain.User, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := s.userRepo.GetByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// deriveNames picks a display name from the provider's metadata and splits
// it into first/last. The priority order matches what the identity
// providers actually populate; first non-empty wins.
func deriveNames(u *authprovider.User) (displayName, firstName, lastName string) {
	candidates := []string{
		u.UserMetadata.String("name"),
		u.UserMetadata.String("display_name"),
		u.UserMetadata.String("full_name"),
		u.AppMetadata.String("first_name"),
		u.AppMetadata.String("last_name"),
		u.AppMetadata.String("given_name"),
		u.UserMetadata.String("family_name"),
	}
	for _, c := range candidates {
		if c != "" {
			displayName = c
			break
		}
	}
	firstName, lastName = splitDisplayName(displayName)
	return displayName, firstName, lastName
}

// splitDisplayName takes the first whitespace token as the first name and
// the second as the last name. Middle names and multi-word surnames are
// dropped; known limitation.
func splitDisplayName(name string) (firstName, lastName string) {
	fields := strings.Fields(name)
	if len(fields) > 0 {
		firstName = fields[0]
	}
	if len(fields) > 1 {
		lastName = fields[1]
	}
	return firstName, lastName
}

func valueOr(v *string, fallback string) string {
	if v != nil && *v != "" {
		return *v
	}
	return fallback
}
