// Seeds a development database with a few users, messages, and follows so the
// feed has something to show.
package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/warblerhq/warbler/config"
	"github.com/warblerhq/warbler/internal/database"
	"github.com/warblerhq/warbler/internal/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	db, err := database.New(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("Failed to migrate database")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to hash password")
	}

	seedUsers := []struct {
		username string
		bio      string
		posts    []string
	}{
		{"alice", "Early bird warbler", []string{"First post!", "Good morning everyone"}},
		{"bob", "Just here for the feed", []string{"hi", "bye"}},
		{"carol", "Posting into the void", []string{"ignored by most"}},
	}

	users := make([]models.User, 0, len(seedUsers))
	for _, su := range seedUsers {
		user := models.User{
			Username:       su.username,
			Email:          fmt.Sprintf("%s@example.com", su.username),
			PasswordHash:   string(hashedPassword),
			ImageURL:       models.DefaultImageURL,
			HeaderImageURL: models.DefaultHeaderImageURL,
			Bio:            su.bio,
		}
		if err := db.Where("username = ?", su.username).FirstOrCreate(&user).Error; err != nil {
			logrus.WithError(err).WithField("username", su.username).Fatal("Failed to seed user")
		}
		for _, text := range su.posts {
			msg := models.Message{Text: text, UserID: user.ID}
			if err := db.Where("user_id = ? AND text = ?", user.ID, text).FirstOrCreate(&msg).Error; err != nil {
				logrus.WithError(err).Fatal("Failed to seed message")
			}
		}
		users = append(users, user)
	}

	follows := []models.Follow{
		{FollowerID: users[0].ID, FollowedID: users[1].ID}, // alice follows bob
		{FollowerID: users[1].ID, FollowedID: users[0].ID}, // bob follows alice
	}
	for _, edge := range follows {
		if err := db.Where("follower_id = ? AND followed_id = ?", edge.FollowerID, edge.FollowedID).
			FirstOrCreate(&edge).Error; err != nil {
			logrus.WithError(err).Fatal("Failed to seed follow")
		}
	}

	logrus.WithField("users", len(users)).Info("Seed complete")
}
