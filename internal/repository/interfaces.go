package repository

import (
	"context"

	"github.com/bobr/forum-website/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByUserID(ctx context.Context, userID uint) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uint) error
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uint) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]*domain.Post, error)
	Count(ctx context.Context) (int64, error)
	ListByUsername(ctx context.Context, username string, limit, offset int) ([]*domain.Post, error)
	CountByUsername(ctx context.Context, username string) (int64, error)
}

type Repositories struct {
	User    UserRepository
	Session SessionRepository
	Post    PostRepository
}
