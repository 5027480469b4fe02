package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/warblerhq/warbler/internal/models"
)

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
		ImageURL:     models.DefaultImageURL,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createMessage(t *testing.T, db *gorm.DB, userID uint, text string, createdAt time.Time) *models.Message {
	t.Helper()
	msg := &models.Message{
		Text:      text,
		UserID:    userID,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(msg).Error)
	return msg
}
