package models

import (
	"time"

	"gorm.io/gorm"
)

// Voucher is a redeemable reward priced in points.
type Voucher struct {
	gorm.Model
	Name              string `gorm:"not null"`
	Description       string
	CostPoints        int    `gorm:"not null"`
	Code              string `gorm:"not null"`
	AvailableQuantity int    `gorm:"not null;default:0"`
}

// VoucherRedemption records a voucher exchange. One row per
// (user, voucher) pair; redemption is one-time per user per voucher.
type VoucherRedemption struct {
	gorm.Model
	UserID      uint `gorm:"not null;uniqueIndex:idx_user_voucher"`
	VoucherID   uint `gorm:"not null;uniqueIndex:idx_user_voucher"`
	PointsSpent int  `gorm:"not null"`
	RedeemedAt  time.Time
}
