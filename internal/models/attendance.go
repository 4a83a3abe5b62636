package models

import (
	"gorm.io/gorm"
)

// Confirmation marks one capacity slot of a game as taken by a user.
// CreatedAt doubles as the confirmation timestamp and defines the roster
// order.
type Confirmation struct {
	gorm.Model
	GameID uint `json:"game_id" gorm:"uniqueIndex:idx_game_user_confirmation"`
	UserID uint `json:"user_id" gorm:"uniqueIndex:idx_game_user_confirmation"`
	User   User `json:"user"`
}

// Guest is a named non-member brought by a confirmed user. Guests count
// against the game capacity and cannot outlive their host's confirmation.
type Guest struct {
	gorm.Model
	GameID   uint   `json:"game_id" gorm:"uniqueIndex:idx_game_host_guest"`
	UserID   uint   `json:"user_id" gorm:"uniqueIndex:idx_game_host_guest"`
	User     User   `json:"-"`
	Name     string `json:"name"`
	Document string `json:"document"`
}

// WaitingListEntry queues a user for a full game. FIFO position is the
// CreatedAt timestamp, ascending.
type WaitingListEntry struct {
	gorm.Model
	GameID uint `json:"game_id" gorm:"uniqueIndex:idx_game_user_waiting"`
	UserID uint `json:"user_id" gorm:"uniqueIndex:idx_game_user_waiting"`
	User   User `json:"user"`
}
