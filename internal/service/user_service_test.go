package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/authprovider"
	"github.com/mino-dev/mino-web/internal/domain"
	"github.com/mino-dev/mino-web/internal/repository/postgres"
	"github.com/mino-dev/mino-web/internal/service"
	"github.com/mino-dev/mino-web/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Upsert(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	userService := service.NewUserService(repos.User, nil)
	ctx := context.Background()

	callerID := uuid.New()
	caller := &authprovider.User{
		ID:    callerID,
		Email: "jane@example.com",
		UserMetadata: authprovider.Metadata{
			"name":       "Jane Smith",
			"avatar_url": "https://example.com/jane.png",
		},
	}

	strPtr := func(s string) *string { return &s }

	tests := []struct {
		name    string
		caller  *authprovider.User
		input   service.UpsertUserInput
		wantErr error
		check   func(t *testing.T, user *domain.User)
	}{
		{
			name:   "creates user from provider metadata",
			caller: caller,
			input:  service.UpsertUserInput{ID: callerID},
			check: func(t *testing.T, user *domain.User) {
				assert.Equal(t, callerID, user.ID)
				assert.Equal(t, "Jane Smith", user.DisplayName)
				assert.Equal(t, "Jane", user.FirstName)
				assert.Equal(t, "Smith", user.LastName)
				assert.Equal(t, "jane@example.com", user.Email)
				assert.Equal(t, "https://example.com/jane.png", user.AvatarURL)
			},
		},
		{
			name:   "explicit input overrides derived values",
			caller: caller,
			input: service.UpsertUserInput{
				ID:          callerID,
				DisplayName: strPtr("JS"),
				FirstName:   strPtr("Janet"),
			},
			check: func(t *testing.T, user *domain.User) {
				assert.Equal(t, "JS", user.DisplayName)
				assert.Equal(t, "Janet", user.FirstName)
				// Unset fields still derive from metadata.
				assert.Equal(t, "Smith", user.LastName)
			},
		},
		{
			name:    "nil caller is unauthorized",
			caller:  nil,
			input:   service.UpsertUserInput{ID: callerID},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "writing a different user is forbidden",
			caller:  caller,
			input:   service.UpsertUserInput{ID: uuid.New()},
			wantErr: domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)

			user, err := userService.Upsert(ctx, tt.caller, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)

				// Nothing may have been written.
				var count int64
				testDB.DB.Model(&domain.User{}).Count(&count)
				assert.Zero(t, count)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			if tt.check != nil {
				tt.check(t, user)
			}
		})
	}
}

func TestUserService_UpsertTwiceUpdatesInPlace(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	userService := service.NewUserService(repos.User, nil)
	ctx := context.Background()

	caller := &authprovider.User{
		ID:    uuid.New(),
		Email: "jane@example.com",
		UserMetadata: authprovider.Metadata{
			"name": "Jane Smith",
		},
	}

	first, err := userService.Upsert(ctx, caller, service.UpsertUserInput{ID: caller.ID})
	require.NoError(t, err)
	require.NotNil(t, first)

	// Provider metadata changed between logins.
	caller.UserMetadata["name"] = "Jane Doe"
	second, err := userService.Upsert(ctx, caller, service.UpsertUserInput{ID: caller.ID})
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Jane Doe", second.DisplayName)
	assert.Equal(t, "Doe", second.LastName)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt), "updatedAt must advance on every upsert")
	assert.WithinDuration(t, first.CreatedAt, second.CreatedAt, 0, "createdAt preserved on conflict")

	var count int64
	testDB.DB.Model(&domain.User{}).Count(&count)
	assert.EqualValues(t, 1, count, "upsert must not create a second row")
}

type failingProvisioner struct{}

func (failingProvisioner) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	return "", errors.New("stripe is down")
}

type stubProvisioner struct{ calls int }

func (p *stubProvisioner) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	p.calls++
	return "cus_test123", nil
}

func TestUserService_UpsertBillingProvisioning(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	caller := &authprovider.User{
		ID:           uuid.New(),
		Email:        "jane@example.com",
		UserMetadata: authprovider.Metadata{"name": "Jane Smith"},
	}

	t.Run("customer created once on first insert", func(t *testing.T) {
		testDB.Truncate(t)
		provisioner := &stubProvisioner{}
		userService := service.NewUserService(repos.User, provisioner)

		user, err := userService.Upsert(ctx, caller, service.UpsertUserInput{ID: caller.ID})
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "cus_test123", user.StripeCustomerID)

		// Second login must not provision again.
		user, err = userService.Upsert(ctx, caller, service.UpsertUserInput{ID: caller.ID})
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "cus_test123", user.StripeCustomerID)
		assert.Equal(t, 1, provisioner.calls)
	})

	t.Run("billing failure never blocks login", func(t *testing.T) {
		testDB.Truncate(t)
		userService := service.NewUserService(repos.User, failingProvisioner{})

		user, err := userService.Upsert(ctx, caller, service.UpsertUserInput{ID: caller.ID})
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Empty(t, user.StripeCustomerID)
	})
}

func TestUserService_Get(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	userService := service.NewUserService(repos.User, nil)
	ctx := context.Background()

	existing := testutil.NewUserBuilder().WithDisplayName("existing").Build(t, testDB.DB)

	t.Run("returns own record", func(t *testing.T) {
		user, err := userService.Get(ctx, &authprovider.User{ID: existing.ID})
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "existing", user.DisplayName)
	})

	t.Run("no record yet is nil not error", func(t *testing.T) {
		user, err := userService.Get(ctx, &authprovider.User{ID: uuid.New()})
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("nil caller is unauthorized", func(t *testing.T) {
		_, err := userService.Get(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
