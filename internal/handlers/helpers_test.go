package handlers

import (
	"errors"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/grupo123/gameday-api/internal/auth"
	"github.com/grupo123/gameday-api/internal/config"
	"github.com/grupo123/gameday-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (*gorm.DB, *auth.AuthHandler) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
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
		t.Fatalf("Failed to migrate database: %v", err)
	}
	authHandler := auth.NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, db)
	return db, authHandler
}

func createTestUser(t *testing.T, db *gorm.DB, name string, role models.Role) models.User {
	t.Helper()
	user := models.User{FullName: name, Email: name + "@example.com", Role: role}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func cookieFor(t *testing.T, authHandler *auth.AuthHandler, userID uint) string {
	t.Helper()
	token, err := authHandler.GenerateToken(userID)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return auth.AuthCookieName + "=" + token
}

func createTestSport(t *testing.T, db *gorm.DB, name string) models.Sport {
	t.Helper()
	sport := models.Sport{Name: name, DayOfWeek: 3, Time: "19:00", Visible: true}
	if err := db.Create(&sport).Error; err != nil {
		t.Fatalf("Failed to create sport: %v", err)
	}
	return sport
}

func createTestGame(t *testing.T, db *gorm.DB, sportID uint, maxPlayers int) models.Game {
	t.Helper()
	game := models.Game{
		SportID:    sportID,
		Date:       time.Now().UTC().Add(48 * time.Hour),
		Time:       "19:00",
		Location:   "Club court",
		MaxPlayers: maxPlayers,
		Visible:    true,
	}
	if err := db.Create(&game).Error; err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}
	return game
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	if err := db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return count
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error with status %d, got nil", status)
	}
	var se huma.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Expected a status error, got: %v", err)
	}
	if se.GetStatus() != status {
		t.Fatalf("Expected status %d, got %d: %v", status, se.GetStatus(), err)
	}
}
