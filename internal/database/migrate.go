package database

import (
	"gorm.io/gorm"

	"github.com/warblerhq/warbler/internal/models"
)

// Migrate applies the schema for all Warbler entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.Follow{},
		&models.Like{},
	)
}
