package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/bobr/forum-website/internal/config"
	"github.com/bobr/forum-website/internal/domain"
	"github.com/bobr/forum-website/internal/mail"
	"github.com/bobr/forum-website/internal/repository"
	"github.com/bobr/forum-website/internal/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email is not confirmed")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	tokens      *token.Issuer
	mailer      mail.Sender
	cfg         *config.Config
}

func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, tokens *token.Issuer, mailer mail.Sender, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		mailer:      mailer,
		cfg:         cfg,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// Register creates an inactive account and sends the confirmation email.
// The account cannot log in until the emailed token is redeemed.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if existing, err := s.userRepo.GetByUsername(ctx, input.Username); err == nil && existing != nil {
		return nil, ErrUsernameExists
	}
	if existing, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		ImageFile:    "default.jpg",
		CreatedAt:    time.Now(),
		IsActive:     false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.sendConfirmEmail(user)

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrEmailNotConfirmed
	}

	return s.generateTokens(ctx, user)
}

// RequestPasswordReset mints a short-lived reset token and mails the link.
// An unknown email is not an error: the caller gets the same outcome either
// way so the endpoint cannot be used to enumerate accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	tok, err := s.tokens.Issue(user.ID, s.cfg.ResetTokenTTL)
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset_password/%s", s.cfg.BaseURL, tok)
	if err := s.mailer.SendPasswordReset(user.Email, user.Username, resetURL); err != nil {
		log.Printf("ERROR [service.AuthService] failed to send reset email to %s: %v", user.Email, err)
		return err
	}
	return nil
}

// VerifyActionToken resolves an action token to the user it was minted for.
// Tampered, expired and malformed tokens all come back as token.ErrInvalid.
func (s *AuthService) VerifyActionToken(ctx context.Context, tokenString string) (*domain.User, error) {
	userID, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, token.ErrInvalid
		}
		return nil, err
	}
	return user, nil
}

// ResetPassword redeems a reset token and replaces the user's password.
// The token stays valid until expiry; there is no single-use invalidation.
func (s *AuthService) ResetPassword(ctx context.Context, tokenString, newPassword string) (*domain.User, error) {
	user, err := s.VerifyActionToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ConfirmEmail redeems a confirmation token and activates the account.
func (s *AuthService) ConfirmEmail(ctx context.Context, tokenString string) (*domain.User, error) {
	user, err := s.VerifyActionToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	user.IsActive = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SendConfirmation re-issues the confirmation email, used when an account
// update changes the email address.
func (s *AuthService) SendConfirmation(user *domain.User) {
	s.sendConfirmEmail(user)
}

func (s *AuthService) sendConfirmEmail(user *domain.User) {
	tok, err := s.tokens.Issue(user.ID, s.cfg.ConfirmTokenTTL)
	if err != nil {
		log.Printf("ERROR [service.AuthService] failed to mint confirm token for user %d: %v", user.ID, err)
		return
	}

	confirmURL := fmt.Sprintf("%s/confirm_mail/%s", s.cfg.BaseURL, tok)
	if err := s.mailer.SendEmailConfirmation(user.Email, user.Username, confirmURL); err != nil {
		// Registration still succeeds; the user can request another mail.
		log.Printf("ERROR [service.AuthService] failed to send confirm email to %s: %v", user.Email, err)
	}
}

func (s *AuthService) generateTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken := uuid.New().String()
	hashedRefresh, err := bcrypt.GenerateFromPassword([]byte(refreshToken), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// Delete old sessions
	_ = s.sessionRepo.DeleteByUserID(ctx, user.ID)

	session := &domain.UserSession{
		ID:               uuid.New(),
		UserID:           user.ID,
		RefreshTokenHash: string(hashedRefresh),
		ExpiresAt:        time.Now().Add(7 * 24 * time.Hour),
		CreatedAt:        time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *AuthService) generateAccessToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"name": user.Username,
		"exp":  time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (*jwt.MapClaims, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := t.Claims.(jwt.MapClaims); ok && t.Valid {
		return &claims, nil
	}

	return nil, errors.New("invalid token")
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	return s.sessionRepo.DeleteByUserID(ctx, userID)
}
