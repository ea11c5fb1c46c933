package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/bobr/forum-website/internal/domain"
	"github.com/bobr/forum-website/internal/imaging"
	"github.com/bobr/forum-website/internal/repository"
	"gorm.io/gorm"
)

const thumbnailSize = 125

// AccountService updates profile details and stores profile pictures.
type AccountService struct {
	userRepo  repository.UserRepository
	auth      *AuthService
	uploadDir string
}

func NewAccountService(userRepo repository.UserRepository, auth *AuthService, uploadDir string) *AccountService {
	return &AccountService{
		userRepo:  userRepo,
		auth:      auth,
		uploadDir: uploadDir,
	}
}

type UpdateAccountInput struct {
	Username string
	Email    string
}

// Update changes the username and email. Changing the email deactivates the
// account and re-sends the confirmation mail; the user must confirm the new
// address before logging in again.
func (s *AccountService) Update(ctx context.Context, userID uint, input UpdateAccountInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Username != user.Username {
		if existing, err := s.userRepo.GetByUsername(ctx, input.Username); err == nil && existing != nil {
			return nil, ErrUsernameExists
		}
		user.Username = input.Username
	}

	if input.Email != user.Email {
		if existing, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil && existing != nil {
			return nil, ErrEmailExists
		}
		user.Email = input.Email
		user.IsActive = false
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if !user.IsActive {
		// The deactivated account must confirm the new address and log in
		// again; keeping the refresh session alive would bypass the gate.
		if err := s.auth.Logout(ctx, user.ID); err != nil {
			return nil, err
		}
		s.auth.SendConfirmation(user)
	}

	return user, nil
}

// SavePicture stores the uploaded image under a random filename, downscaled
// to fit the profile thumbnail size, and records it on the user.
func (s *AccountService) SavePicture(ctx context.Context, userID uint, picture io.Reader, originalName string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	randomHex := make([]byte, 8)
	rand.Read(randomHex)
	filename := hex.EncodeToString(randomHex) + filepath.Ext(originalName)

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, err
	}

	f, err := os.Create(filepath.Join(s.uploadDir, filename))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := imaging.Thumbnail(f, picture, thumbnailSize, thumbnailSize); err != nil {
		os.Remove(f.Name())
		return nil, err
	}

	user.ImageFile = filename
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
