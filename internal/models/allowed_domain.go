package models

import (
	"gorm.io/gorm"
)

// AllowedDomain is an email domain accepted at sign-up.
type AllowedDomain struct {
	gorm.Model
	Domain string `json:"domain" gorm:"uniqueIndex"`
}
