package domain

import "time"

type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:250;not null"`
	Content   string    `json:"content" gorm:"size:900;not null"`
	UserID    uint      `json:"userId" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`

	User *User `json:"author,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}
