package models

import (
	"time"
)

// Like marks a message as liked by a user, at most once per pair.
type Like struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_message" json:"user_id"`
	MessageID uint      `gorm:"not null;uniqueIndex:idx_likes_user_message" json:"message_id"`
}

func (Like) TableName() string {
	return "likes"
}
