package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mino-dev/mino-web/internal/domain"
	"github.com/mino-dev/mino-web/internal/repository/postgres"
	"github.com/mino-dev/mino-web/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_Upsert(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	t.Run("insert then update keeps one row", func(t *testing.T) {
		testDB.Truncate(t)

		id := uuid.New()
		first := &domain.User{
			ID:          id,
			FirstName:   "Jane",
			LastName:    "Smith",
			DisplayName: "Jane Smith",
			Email:       "jane@example.com",
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		require.NoError(t, repos.User.Upsert(ctx, first))

		second := &domain.User{
			ID:          id,
			FirstName:   "Jane",
			LastName:    "Doe",
			DisplayName: "Jane Doe",
			Email:       "jane.doe@example.com",
			AvatarURL:   "https://example.com/jane.png",
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now().Add(time.Second),
		}
		require.NoError(t, repos.User.Upsert(ctx, second))

		var count int64
		testDB.DB.Model(&domain.User{}).Count(&count)
		assert.EqualValues(t, 1, count)

		got, err := repos.User.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", got.DisplayName)
		assert.Equal(t, "Doe", got.LastName)
		assert.Equal(t, "jane.doe@example.com", got.Email)
		assert.Equal(t, "https://example.com/jane.png", got.AvatarURL)
		assert.True(t, got.UpdatedAt.After(got.CreatedAt), "updated_at advances on conflict")
	})

	t.Run("conflict preserves billing and installation ids", func(t *testing.T) {
		testDB.Truncate(t)

		id := uuid.New()
		seeded := &domain.User{
			ID:                   id,
			DisplayName:          "Jane Smith",
			Email:                "jane@example.com",
			StripeCustomerID:     "cus_abc",
			GithubInstallationID: "inst_123",
			CreatedAt:            time.Now(),
			UpdatedAt:            time.Now(),
		}
		require.NoError(t, repos.User.Upsert(ctx, seeded))

		// A later login writes no billing fields.
		relogin := &domain.User{
			ID:          id,
			DisplayName: "Jane Smith",
			Email:       "jane@example.com",
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		require.NoError(t, repos.User.Upsert(ctx, relogin))

		got, err := repos.User.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "cus_abc", got.StripeCustomerID)
		assert.Equal(t, "inst_123", got.GithubInstallationID)
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	user := testutil.NewUserBuilder().WithDisplayName("lookup").Build(t, testDB.DB)

	got, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "lookup", got.DisplayName)

	_, err = repos.User.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserCanvasRepository_Upsert(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	user := testutil.NewUserBuilder().Build(t, testDB.DB)
	project := testutil.NewProjectBuilder().WithOwner(user).Build(t, testDB.DB)

	first := &domain.UserCanvas{
		UserID:   user.ID,
		CanvasID: project.Canvas.ID,
		Scale:    1.0,
		X:        10,
		Y:        20,
	}
	require.NoError(t, repos.UserCanvas.Upsert(ctx, first))

	second := &domain.UserCanvas{
		UserID:   user.ID,
		CanvasID: project.Canvas.ID,
		Scale:    2.5,
		X:        -40,
		Y:        300,
	}
	require.NoError(t, repos.UserCanvas.Upsert(ctx, second))

	var count int64
	testDB.DB.Model(&domain.UserCanvas{}).Count(&count)
	assert.EqualValues(t, 1, count, "composite key upsert must not add rows")

	got, err := repos.UserCanvas.Get(ctx, user.ID, project.Canvas.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.5, got.Scale)
	assert.Equal(t, -40.0, got.X)
	assert.Equal(t, 300.0, got.Y)
}
