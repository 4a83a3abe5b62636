package database

import (
	"log"

	"github.com/grupo123/gameday-api/internal/config"
	"github.com/grupo123/gameday-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto Migrate
	err = db.AutoMigrate(
		&models.User{},
		&models.Sport{},
		&models.Game{},
		&models.Confirmation{},
		&models.Guest{},
		&models.WaitingListEntry{},
		&models.AllowedDomain{},
		&models.PasswordResetToken{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	return db
}
