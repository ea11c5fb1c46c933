package service

import (
	"github.com/bobr/forum-website/internal/config"
	"github.com/bobr/forum-website/internal/mail"
	"github.com/bobr/forum-website/internal/repository"
	"github.com/bobr/forum-website/internal/token"
)

// Services bundles the application services for the router.
type Services struct {
	Auth    *AuthService
	Post    *PostService
	Account *AccountService
}

func NewServices(repos *repository.Repositories, tokens *token.Issuer, mailer mail.Sender, cfg *config.Config) *Services {
	auth := NewAuthService(repos.User, repos.Session, tokens, mailer, cfg)
	return &Services{
		Auth:    auth,
		Post:    NewPostService(repos.Post, repos.User),
		Account: NewAccountService(repos.User, auth, cfg.UploadDir),
	}
}
