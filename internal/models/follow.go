package models

import (
	"time"
)

// Follow is a directed user-to-user edge. The composite primary key keeps
// each relationship unique; a duplicate insert fails at the storage layer.
type Follow struct {
	FollowerID uint      `gorm:"primarykey;autoIncrement:false" json:"follower_id"`
	FollowedID uint      `gorm:"primarykey;autoIncrement:false" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}
