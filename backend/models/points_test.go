package models_test

import (
	"os"
	"testing"

	"learn2earn/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

func TestMain(m *testing.M) {
	var err error
	db, err = gorm.Open(sqlite.Open("file:points_test?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Module{},
		&models.UserProgress{},
		&models.Voucher{},
		&models.VoucherRedemption{},
	)
	if err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

func createUser(t *testing.T, name string, points int) *models.User {
	t.Helper()
	user := models.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Points:       points,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createModule(t *testing.T, title string, reward int) *models.Module {
	t.Helper()
	module := models.Module{
		Title:         title,
		Question:      "?",
		Options:       `["a","b"]`,
		CorrectAnswer: 1,
		PointsReward:  reward,
	}
	require.NoError(t, db.Create(&module).Error)
	return &module
}

func createVoucher(t *testing.T, name string, cost, quantity int) *models.Voucher {
	t.Helper()
	voucher := models.Voucher{
		Name:              name,
		CostPoints:        cost,
		Code:              name + "-CODE",
		AvailableQuantity: quantity,
	}
	require.NoError(t, db.Create(&voucher).Error)
	return &voucher
}

func reloadUser(t *testing.T, id uint) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return &user
}

func TestCompleteModuleCreditsOnce(t *testing.T) {
	user := createUser(t, "learner", 0)
	module := createModule(t, "Intro", 150)

	awarded, err := models.CompleteModule(db, user.ID, module)
	require.NoError(t, err)
	assert.Equal(t, 150, awarded)
	assert.Equal(t, 150, reloadUser(t, user.ID).Points)

	// Completed state is terminal; further submissions credit nothing
	awarded, err = models.CompleteModule(db, user.ID, module)
	require.NoError(t, err)
	assert.Equal(t, 0, awarded)
	assert.Equal(t, 150, reloadUser(t, user.ID).Points)

	var count int64
	db.Model(&models.UserProgress{}).
		Where("user_id = ? AND module_id = ?", user.ID, module.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCompleteModuleWritesTimestamp(t *testing.T) {
	user := createUser(t, "stamped", 0)
	module := createModule(t, "Stamps", 50)

	_, err := models.CompleteModule(db, user.ID, module)
	require.NoError(t, err)

	var progress models.UserProgress
	require.NoError(t, db.Where("user_id = ? AND module_id = ?", user.ID, module.ID).First(&progress).Error)
	assert.True(t, progress.Completed)
	require.NotNil(t, progress.CompletedAt)
	assert.False(t, progress.CompletedAt.IsZero())
}

func TestRedeemVoucherDebitsAndRecords(t *testing.T) {
	user := createUser(t, "spender", 500)
	voucher := createVoucher(t, "FIVE-HUNDRED", 500, 3)

	redeemed, balance, err := models.RedeemVoucher(db, user.ID, voucher.ID)
	require.NoError(t, err)
	assert.Equal(t, voucher.ID, redeemed.ID)
	assert.Equal(t, 0, balance)
	assert.Equal(t, 0, reloadUser(t, user.ID).Points)

	var stored models.Voucher
	require.NoError(t, db.First(&stored, voucher.ID).Error)
	assert.Equal(t, 2, stored.AvailableQuantity)

	var redemption models.VoucherRedemption
	require.NoError(t, db.Where("user_id = ? AND voucher_id = ?", user.ID, voucher.ID).First(&redemption).Error)
	assert.Equal(t, 500, redemption.PointsSpent)
	assert.False(t, redemption.RedeemedAt.IsZero())
}

func TestRedeemVoucherInsufficientPoints(t *testing.T) {
	user := createUser(t, "short", 100)
	voucher := createVoucher(t, "PRICEY", 500, 3)

	_, _, err := models.RedeemVoucher(db, user.ID, voucher.ID)
	assert.ErrorIs(t, err, models.ErrInsufficientPoints)

	// The refused redemption leaves no trace: balance, stock and the
	// redemption ledger are all untouched.
	assert.Equal(t, 100, reloadUser(t, user.ID).Points)

	var stored models.Voucher
	require.NoError(t, db.First(&stored, voucher.ID).Error)
	assert.Equal(t, 3, stored.AvailableQuantity)

	var count int64
	db.Model(&models.VoucherRedemption{}).Where("user_id = ?", user.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestRedeemVoucherTwiceRefused(t *testing.T) {
	user := createUser(t, "repeat", 1000)
	voucher := createVoucher(t, "ONCE", 300, 5)

	_, balance, err := models.RedeemVoucher(db, user.ID, voucher.ID)
	require.NoError(t, err)
	assert.Equal(t, 700, balance)

	_, _, err = models.RedeemVoucher(db, user.ID, voucher.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyRedeemed)
	assert.Equal(t, 700, reloadUser(t, user.ID).Points)
}

func TestRedeemVoucherExhausted(t *testing.T) {
	user := createUser(t, "tardy", 1000)
	voucher := createVoucher(t, "GONE", 100, 0)

	_, _, err := models.RedeemVoucher(db, user.ID, voucher.ID)
	assert.ErrorIs(t, err, models.ErrVoucherExhausted)
	assert.Equal(t, 1000, reloadUser(t, user.ID).Points)
}

func TestRedeemUnknownVoucher(t *testing.T) {
	user := createUser(t, "lost", 1000)

	_, _, err := models.RedeemVoucher(db, user.ID, 99999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// A balance that covers only one of two redemptions must yield exactly
// one success: the debit is conditional on the balance still covering
// the cost when the transaction commits.
func TestBalanceCoversOnlyOneRedemption(t *testing.T) {
	user := createUser(t, "contender", 500)
	first := createVoucher(t, "RACE-A", 500, 5)
	second := createVoucher(t, "RACE-B", 500, 5)

	successes := 0
	for _, v := range []*models.Voucher{first, second} {
		if _, _, err := models.RedeemVoucher(db, user.ID, v.ID); err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, models.ErrInsufficientPoints)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, reloadUser(t, user.ID).Points)

	var count int64
	db.Model(&models.VoucherRedemption{}).Where("user_id = ?", user.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

// Balance always equals credits minus debits and never goes negative.
func TestBalanceIsSumOfCreditsMinusDebits(t *testing.T) {
	user := createUser(t, "auditor", 0)
	first := createModule(t, "Audit 1", 200)
	second := createModule(t, "Audit 2", 300)
	voucher := createVoucher(t, "AUDIT", 150, 5)

	_, err := models.CompleteModule(db, user.ID, first)
	require.NoError(t, err)
	_, err = models.CompleteModule(db, user.ID, second)
	require.NoError(t, err)
	_, _, err = models.RedeemVoucher(db, user.ID, voucher.ID)
	require.NoError(t, err)

	assert.Equal(t, 200+300-150, reloadUser(t, user.ID).Points)
}
