package models

import (
	"time"
)

// MaxMessageLength bounds the text body of a message.
const MaxMessageLength = 140

// Message is a short post. Immutable once created except for deletion.
type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Text      string    `gorm:"size:140;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"user"`
}
