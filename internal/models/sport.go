package models

import (
	"gorm.io/gorm"
)

// Sport is a recurring weekly slot. Each sport owns at most one visible
// (active) game at a time; game creation enforces that.
type Sport struct {
	gorm.Model
	Name      string `json:"name" gorm:"uniqueIndex"`
	Icon      string `json:"icon"`
	DayOfWeek int    `json:"day_of_week"`
	Time      string `json:"time"`
	Visible   bool   `json:"visible" gorm:"default:true"`
}
