package service_test

import (
	"context"
	"testing"

	"github.com/bobr/forum-website/internal/repository/postgres"
	"github.com/bobr/forum-website/internal/service"
	"github.com/bobr/forum-website/internal/testutil"
	"github.com/bobr/forum-website/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*service.AuthService, *testutil.TestDB, *testutil.RecordingMailer) {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	mailer := &testutil.RecordingMailer{}
	tokens := token.NewIssuer(cfg.ActionTokenSecret)
	authService := service.NewAuthService(repos.User, repos.Session, tokens, mailer, cfg)
	return authService, testDB, mailer
}

func TestAuthService_Register(t *testing.T) {
	authService, testDB, mailer := newAuthService(t)
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
				Username: "newuser",
				Email:    "newuser@example.com",
				Password: "password123",
			},
		},
		{
			name: "duplicate username",
			input: service.RegisterInput{
				Username: "existinguser",
				Email:    "fresh@example.com",
				Password: "password123",
			},
			setup: func() {
				testutil.NewUserBuilder().WithUsername("existinguser").Build(t, testDB.DB)
			},
			wantErr: service.ErrUsernameExists,
		},
		{
			name: "duplicate email",
			input: service.RegisterInput{
				Username: "freshuser",
				Email:    "taken@example.com",
				Password: "password123",
			},
			setup: func() {
				testutil.NewUserBuilder().WithEmail("taken@example.com").Build(t, testDB.DB)
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
			assert.Equal(t, tt.input.Username, user.Username)
			assert.False(t, user.IsActive, "account starts unconfirmed")
			assert.NotEmpty(t, mailer.LastToken("confirm"), "confirmation mail carries a token")
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	authService, testDB, _ := newAuthService(t)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithEmail("login@example.com").
		WithPassword("correctpassword").
		Build(t, testDB.DB)

	_, unconfirmedPassword := testutil.NewUserBuilder().
		WithEmail("pending@example.com").
		Unconfirmed().
		Build(t, testDB.DB)

	tests := []struct {
		name    string
		input   service.LoginInput
		wantErr error
	}{
		{
			name:  "successful login",
			input: service.LoginInput{Email: user.Email, Password: rawPassword},
		},
		{
			name:    "wrong password",
			input:   service.LoginInput{Email: user.Email, Password: "wrongpassword"},
			wantErr: service.ErrInvalidCredentials,
		},
		{
			name:    "non-existent user",
			input:   service.LoginInput{Email: "ghost@example.com", Password: "anypassword"},
			wantErr: service.ErrInvalidCredentials,
		},
		{
			name:    "unconfirmed email rejected",
			input:   service.LoginInput{Email: "pending@example.com", Password: unconfirmedPassword},
			wantErr: service.ErrEmailNotConfirmed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authService.Login(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, result.AccessToken)
			assert.NotEmpty(t, result.RefreshToken)
			assert.Equal(t, user.ID, result.User.ID)
		})
	}
}

func TestAuthService_ConfirmEmail(t *testing.T) {
	authService, _, mailer := newAuthService(t)
	ctx := context.Background()

	_, err := authService.Register(ctx, service.RegisterInput{
		Username: "confirmme",
		Email:    "confirmme@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	tok := mailer.LastToken("confirm")
	require.NotEmpty(t, tok)

	user, err := authService.ConfirmEmail(ctx, tok)
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	// The account can now log in.
	result, err := authService.Login(ctx, service.LoginInput{
		Email:    "confirmme@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := authService.ConfirmEmail(ctx, "bogus")
		assert.ErrorIs(t, err, token.ErrInvalid)
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	authService, testDB, mailer := newAuthService(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithEmail("forgetful@example.com").
		Build(t, testDB.DB)

	t.Run("unknown email is not an error", func(t *testing.T) {
		require.NoError(t, authService.RequestPasswordReset(ctx, "ghost@example.com"))
		assert.Empty(t, mailer.LastToken("reset"), "no mail sent for unknown email")
	})

	require.NoError(t, authService.RequestPasswordReset(ctx, user.Email))
	tok := mailer.LastToken("reset")
	require.NotEmpty(t, tok)

	_, err := authService.ResetPassword(ctx, tok, "brand-new-password")
	require.NoError(t, err)

	// Old password no longer works, new one does.
	_, err = authService.Login(ctx, service.LoginInput{Email: user.Email, Password: "testpassword123"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	result, err := authService.Login(ctx, service.LoginInput{Email: user.Email, Password: "brand-new-password"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)

	t.Run("token is replayable until expiry", func(t *testing.T) {
		_, err := authService.ResetPassword(ctx, tok, "yet-another-password")
		assert.NoError(t, err)
	})

	t.Run("tampered token is rejected", func(t *testing.T) {
		_, err := authService.ResetPassword(ctx, tok+"x", "whatever")
		assert.ErrorIs(t, err, token.ErrInvalid)
	})
}
