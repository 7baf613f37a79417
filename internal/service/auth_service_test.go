package service_test

import (
	"context"
	"testing"

	"github.com/avdeev/library-app/internal/repository/postgres"
	"github.com/avdeev/library-app/internal/service"
	"github.com/avdeev/library-app/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig(t)
	authService := service.NewAuthService(repos.User, cfg)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.RegisterInput
		setup   func()
		wantErr error
	}{
		{
			name: "successful registration",
			input: service.RegisterInput{
				Email:     "newuser@example.com",
				Password:  "password123",
				FirstName: "New",
				LastName:  "User",
			},
		},
		{
			name: "duplicate email",
			input: service.RegisterInput{
				Email:    "existing@example.com",
				Password: "password123",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("existing@example.com").
					Build(t, testDB.DB)
			},
			wantErr: service.ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			user, err := authService.Register(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.input.Email, user.Email)
			assert.NotEqual(t, tt.input.Password, user.PasswordHash)
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig(t)
	authService := service.NewAuthService(repos.User, cfg)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithEmail("login@example.com").
		WithPassword("correctpassword").
		Build(t, testDB.DB)

	tests := []struct {
		name    string
		input   service.AuthenticateInput
		wantErr error
	}{
		{
			name: "successful login",
			input: service.AuthenticateInput{
				Email:    user.Email,
				Password: rawPassword,
			},
		},
		{
			name: "wrong password",
			input: service.AuthenticateInput{
				Email:    user.Email,
				Password: "wrongpassword",
			},
			wantErr: service.ErrInvalidCredentials,
		},
		{
			name: "non-existent user",
			input: service.AuthenticateInput{
				Email:    "nobody@example.com",
				Password: "anypassword",
			},
			wantErr: service.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authService.Authenticate(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, result.AccessToken)
			assert.NotEmpty(t, result.RefreshToken)

			claims, err := authService.ValidateToken(result.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, user.ID.String(), (*claims)["sub"])
			assert.Equal(t, "user", (*claims)["role"])
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig(t)
	authService := service.NewAuthService(repos.User, cfg)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().Build(t, testDB.DB)

	first, err := authService.Authenticate(ctx, service.AuthenticateInput{
		Email:    user.Email,
		Password: rawPassword,
	})
	require.NoError(t, err)

	second, err := authService.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The rotated-away token must be dead.
	_, err = authService.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidRefresh)

	// And the fresh one alive.
	_, err = authService.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthService_Logout(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig(t)
	authService := service.NewAuthService(repos.User, cfg)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().Build(t, testDB.DB)

	result, err := authService.Authenticate(ctx, service.AuthenticateInput{
		Email:    user.Email,
		Password: rawPassword,
	})
	require.NoError(t, err)

	require.NoError(t, authService.Logout(ctx, user.ID))

	_, err = authService.Refresh(ctx, result.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidRefresh)
}
