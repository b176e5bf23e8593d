package models

import (
	"time"

	"gorm.io/gorm"
)

// Module is a learning unit with one attached multiple-choice quiz.
type Module struct {
	gorm.Model
	Title         string `gorm:"not null"`
	Description   string
	Content       string
	OrderIndex    int    `gorm:"default:0"`
	Question      string `gorm:"not null"`
	Options       string `gorm:"not null"` // JSON array of options
	CorrectAnswer int    `gorm:"not null"`
	PointsReward  int    `gorm:"not null"`
}

// UserProgress marks a module as completed by a user. One row per
// (user, module) pair; once written it is never reverted.
type UserProgress struct {
	gorm.Model
	UserID      uint `gorm:"not null;uniqueIndex:idx_user_module"`
	ModuleID    uint `gorm:"not null;uniqueIndex:idx_user_module"`
	Completed   bool `gorm:"not null;default:false"`
	CompletedAt *time.Time
}
