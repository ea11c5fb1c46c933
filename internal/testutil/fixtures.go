package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bobr/forum-website/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	email    string
	password string
	active   bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: fmt.Sprintf("testuser_%s", suffix),
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		password: "testpassword123",
		active:   true,
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(name string) *UserBuilder {
	b.username = name
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Unconfirmed leaves the account inactive, as freshly registered users are.
func (b *UserBuilder) Unconfirmed() *UserBuilder {
	b.active = false
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		Username:     b.username,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		ImageFile:    "default.jpg",
		CreatedAt:    time.Now(),
		IsActive:     b.active,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate creates a confirmed user and logs it in via the API,
// returning the user and an access token.
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, rawPassword := b.Build(t, ts.DB.DB)

	reqBody := map[string]string{
		"email":    b.email,
		"password": rawPassword,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned status %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode auth response: %v", err)
	}

	return user, authResp.AccessToken
}

// PostBuilder creates test posts
type PostBuilder struct {
	title   string
	content string
	created time.Time
}

func NewPostBuilder() *PostBuilder {
	return &PostBuilder{
		title:   fmt.Sprintf("test post %s", uuid.New().String()[:8]),
		content: "some content",
		created: time.Now(),
	}
}

func (b *PostBuilder) WithTitle(title string) *PostBuilder {
	b.title = title
	return b
}

func (b *PostBuilder) WithContent(content string) *PostBuilder {
	b.content = content
	return b
}

// CreatedAt pins the post's timestamp, useful for pagination-order tests.
func (b *PostBuilder) CreatedAt(ts time.Time) *PostBuilder {
	b.created = ts
	return b
}

func (b *PostBuilder) Build(t *testing.T, db *gorm.DB, author *domain.User) *domain.Post {
	t.Helper()

	post := &domain.Post{
		Title:     b.title,
		Content:   b.content,
		UserID:    author.ID,
		CreatedAt: b.created,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}
	return post
}
