package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/bobr/forum-website/internal/domain"
	"github.com/bobr/forum-website/internal/repository/postgres"
	"github.com/bobr/forum-website/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		wantErr bool
	}{
		{
			name: "successful creation",
			user: &domain.User{
				Username:     "testuser",
				Email:        "testuser@example.com",
				PasswordHash: "hashedpassword",
				ImageFile:    "default.jpg",
				CreatedAt:    time.Now(),
			},
			wantErr: false,
		},
		{
			name: "duplicate username",
			user: &domain.User{
				Username:     "testuser", // Same as above
				Email:        "other@example.com",
				PasswordHash: "hashedpassword2",
				ImageFile:    "default.jpg",
				CreatedAt:    time.Now(),
			},
			wantErr: true,
		},
		{
			name: "duplicate email",
			user: &domain.User{
				Username:     "thirduser",
				Email:        "testuser@example.com", // Same as first
				PasswordHash: "hashedpassword3",
				ImageFile:    "default.jpg",
				CreatedAt:    time.Now(),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotZero(t, tt.user.ID, "numeric id assigned on insert")
			}
		})
	}
}

func TestUserRepository_Lookups(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithUsername("lookup").
		WithEmail("lookup@example.com").
		Build(t, testDB.DB)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)

	got, err = repo.GetByEmail(ctx, "lookup@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = repo.GetByUsername(ctx, "lookup")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	assert.Error(t, err)
}

func TestUserRepository_Update(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	user.IsActive = false
	user.ImageFile = "abc123.jpg"
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "abc123.jpg", got.ImageFile)
}
