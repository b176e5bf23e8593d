package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"default:user"` // user, admin
	Points       int    `gorm:"not null;default:0"`
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}
