package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FullName     string `json:"full_name"`
	Email        string `json:"email" gorm:"uniqueIndex"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role" gorm:"default:player"`
}
