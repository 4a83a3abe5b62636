package models

import (
	"time"

	"gorm.io/gorm"
)

type Game struct {
	gorm.Model
	SportID     uint      `json:"sport_id" gorm:"index"`
	Sport       Sport     `json:"sport"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	MapsLink    string    `json:"maps_link"`
	MaxPlayers  int       `json:"max_players"`
	Visible     bool      `json:"visible" gorm:"default:true"`
	CreatedByID uint      `json:"created_by_id"`
	CreatedBy   User      `json:"-" gorm:"foreignKey:CreatedByID"`
}
