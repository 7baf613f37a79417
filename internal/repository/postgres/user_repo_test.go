package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/avdeev/library-app/internal/domain"
	"github.com/avdeev/library-app/internal/repository/postgres"
	"github.com/avdeev/library-app/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_DuplicateEmail(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	existing, _ := testutil.NewUserBuilder().WithEmail("taken@example.com").Build(t, testDB.DB)

	err := repo.Create(ctx, &domain.User{
		ID:           uuid.New(),
		Email:        existing.Email,
		PasswordHash: "hash",
		Role:         domain.RoleUser,
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserRepository_RotateRefreshToken(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	oldToken := "old-refresh-token"
	expiresAt := time.Now().Add(time.Hour)
	require.NoError(t, testDB.DB.Model(user).Updates(map[string]any{
		"refresh_token":            oldToken,
		"refresh_token_expires_at": expiresAt,
	}).Error)

	t.Run("successful rotation", func(t *testing.T) {
		err := repo.RotateRefreshToken(ctx, user.ID, oldToken, "new-refresh-token", time.Now().Add(time.Hour))
		require.NoError(t, err)

		got, err := repo.GetByRefreshToken(ctx, "new-refresh-token")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("stale token loses", func(t *testing.T) {
		// The old token was already rotated away; a second rotation with it
		// must not succeed.
		err := repo.RotateRefreshToken(ctx, user.ID, oldToken, "another-token", time.Now().Add(time.Hour))
		assert.Error(t, err)
	})
}

func TestUserRepository_ClearRefreshToken(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	require.NoError(t, testDB.DB.Model(user).Updates(map[string]any{
		"refresh_token":            "some-token",
		"refresh_token_expires_at": time.Now().Add(time.Hour),
	}).Error)

	require.NoError(t, repo.ClearRefreshToken(ctx, user.ID))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RefreshToken)
	assert.Nil(t, got.RefreshTokenExpiresAt)
}
