package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Errors returned by the points bookkeeping core. Controllers map
// these onto HTTP statuses.
var (
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrAlreadyRedeemed    = errors.New("voucher already redeemed")
	ErrVoucherExhausted   = errors.New("voucher is out of stock")
)

// CompleteModule marks a module as completed for the user and credits
// the module's point reward. The transition fires exactly once: a user
// who already completed the module gets 0 points awarded and no state
// change, so resubmitting a correct answer for review is idempotent.
func CompleteModule(db *gorm.DB, userID uint, module *Module) (int, error) {
	awarded := 0

	err := db.Transaction(func(tx *gorm.DB) error {
		var existing UserProgress
		err := tx.Where("user_id = ? AND module_id = ?", userID, module.ID).First(&existing).Error
		if err == nil && existing.Completed {
			return nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now()
		progress := UserProgress{
			UserID:      userID,
			ModuleID:    module.ID,
			Completed:   true,
			CompletedAt: &now,
		}
		if err := tx.Create(&progress).Error; err != nil {
			// Lost the race against a concurrent submission; the
			// other one already credited the reward.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil
			}
			return err
		}

		credit := tx.Model(&User{}).Where("id = ?", userID).
			UpdateColumn("points", gorm.Expr("points + ?", module.PointsReward))
		if credit.Error != nil {
			return credit.Error
		}
		if credit.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		awarded = module.PointsReward
		return nil
	})

	return awarded, err
}

// RedeemVoucher exchanges points for a voucher as one atomic unit:
// the balance debit, the quantity decrement and the redemption record
// succeed or fail together. The debit is conditional on the current
// balance covering the cost, which serializes concurrent redemptions
// against the same balance: of two attempts that a balance covers only
// once, exactly one commits.
func RedeemVoucher(db *gorm.DB, userID uint, voucherID uint) (*Voucher, int, error) {
	var voucher Voucher
	newBalance := 0

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&voucher, voucherID).Error; err != nil {
			return err
		}

		var redeemed int64
		if err := tx.Model(&VoucherRedemption{}).
			Where("user_id = ? AND voucher_id = ?", userID, voucher.ID).
			Count(&redeemed).Error; err != nil {
			return err
		}
		if redeemed > 0 {
			return ErrAlreadyRedeemed
		}

		stock := tx.Model(&Voucher{}).
			Where("id = ? AND available_quantity > 0", voucher.ID).
			UpdateColumn("available_quantity", gorm.Expr("available_quantity - 1"))
		if stock.Error != nil {
			return stock.Error
		}
		if stock.RowsAffected == 0 {
			return ErrVoucherExhausted
		}

		debit := tx.Model(&User{}).
			Where("id = ? AND points >= ?", userID, voucher.CostPoints).
			UpdateColumn("points", gorm.Expr("points - ?", voucher.CostPoints))
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			return ErrInsufficientPoints
		}

		redemption := VoucherRedemption{
			UserID:      userID,
			VoucherID:   voucher.ID,
			PointsSpent: voucher.CostPoints,
			RedeemedAt:  time.Now(),
		}
		if err := tx.Create(&redemption).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRedeemed
			}
			return err
		}

		var user User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		newBalance = user.Points
		return nil
	})

	if err != nil {
		return nil, 0, err
	}
	return &voucher, newBalance, nil
}
