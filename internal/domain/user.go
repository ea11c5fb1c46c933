package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"size:50;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:250;not null"`
	ImageFile    string    `json:"imageFile" gorm:"size:40;not null;default:default.jpg"`
	CreatedAt    time.Time `json:"createdAt"`
	// IsActive stays false until the email confirmation token is redeemed.
	IsActive bool `json:"isActive" gorm:"default:false"`

	Posts []Post `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

type UserSession struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID           uint      `json:"userId" gorm:"not null"`
	RefreshTokenHash string    `json:"-" gorm:"not null"`
	ExpiresAt        time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt        time.Time `json:"createdAt"`
}
