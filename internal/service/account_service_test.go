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

func TestAccountService_Update(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	cfg.UploadDir = t.TempDir()
	mailer := &testutil.RecordingMailer{}
	tokens := token.NewIssuer(cfg.ActionTokenSecret)
	authService := service.NewAuthService(repos.User, repos.Session, tokens, mailer, cfg)
	accountService := service.NewAccountService(repos.User, authService, cfg.UploadDir)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithUsername("original").
		WithEmail("original@example.com").
		Build(t, testDB.DB)

	t.Run("username change keeps the account active", func(t *testing.T) {
		updated, err := accountService.Update(ctx, user.ID, service.UpdateAccountInput{
			Username: "renamed",
			Email:    "original@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Username)
		assert.True(t, updated.IsActive)
		assert.Empty(t, mailer.Sent(), "no confirmation mail for a username change")
	})

	t.Run("email change deactivates, logs out and re-sends confirmation", func(t *testing.T) {
		_, err := authService.Login(ctx, service.LoginInput{
			Email:    "original@example.com",
			Password: "testpassword123",
		})
		require.NoError(t, err)

		updated, err := accountService.Update(ctx, user.ID, service.UpdateAccountInput{
			Username: "renamed",
			Email:    "new@example.com",
		})
		require.NoError(t, err)
		assert.False(t, updated.IsActive, "account must confirm the new address")

		_, err = repos.Session.GetByUserID(ctx, user.ID)
		assert.Error(t, err, "refresh session revoked on deactivation")

		tok := mailer.LastToken("confirm")
		require.NotEmpty(t, tok)

		confirmed, err := authService.ConfirmEmail(ctx, tok)
		require.NoError(t, err)
		assert.True(t, confirmed.IsActive)
		assert.Equal(t, "new@example.com", confirmed.Email)
	})

	t.Run("taken username is rejected", func(t *testing.T) {
		testutil.NewUserBuilder().WithUsername("occupied").Build(t, testDB.DB)

		_, err := accountService.Update(ctx, user.ID, service.UpdateAccountInput{
			Username: "occupied",
			Email:    "new@example.com",
		})
		assert.ErrorIs(t, err, service.ErrUsernameExists)
	})
}
