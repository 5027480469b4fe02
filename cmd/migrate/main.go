package main

import (
	"github.com/sirupsen/logrus"

	"github.com/warblerhq/warbler/config"
	"github.com/warblerhq/warbler/internal/database"
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
		logrus.WithError(err).Fatal("Migration failed")
	}

	logrus.Info("Migration complete")
}
