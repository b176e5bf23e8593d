package utils

import (
	"fmt"
	"learn2earn/backend/config"
	"learn2earn/backend/models"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := SeedCatalog(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.Module{},
		&models.UserProgress{},
		&models.Voucher{},
		&models.VoucherRedemption{},
	)
}

// SeedCatalog populates the fixed module catalog and the voucher
// marketplace on an empty database.
func SeedCatalog(db *gorm.DB) error {
	var moduleCount int64
	if err := db.Model(&models.Module{}).Count(&moduleCount).Error; err != nil {
		return err
	}
	if moduleCount == 0 {
		modules := []models.Module{
			{
				Title:         "Budgeting Basics",
				Description:   "Learn how to plan your monthly spending",
				Content:       "A budget is a plan for every dollar you earn. Start by listing your income, then your fixed costs, then decide what is left for savings and flexible spending.",
				OrderIndex:    1,
				Question:      "What should you list first when building a budget?",
				Options:       `["Your income","Your wishlist","Your friends' spending","Last year's taxes"]`,
				CorrectAnswer: 0,
				PointsReward:  100,
			},
			{
				Title:         "Saving and Interest",
				Description:   "Understand how compound interest grows savings",
				Content:       "Compound interest means you earn interest on your interest. The earlier you start saving, the more time compounding has to work for you.",
				OrderIndex:    2,
				Question:      "Compound interest pays interest on...",
				Options:       `["Only the initial deposit","The deposit plus accumulated interest","Monthly fees","Withdrawn funds"]`,
				CorrectAnswer: 1,
				PointsReward:  150,
			},
			{
				Title:         "Smart Spending",
				Description:   "Tell needs apart from wants before you buy",
				Content:       "Before any purchase, ask whether it is a need or a want. Waiting 24 hours before buying a want is a simple rule that curbs impulse spending.",
				OrderIndex:    3,
				Question:      "What is a simple rule against impulse purchases?",
				Options:       `["Buy immediately before the price rises","Wait 24 hours before buying a want","Only shop online","Borrow for every purchase"]`,
				CorrectAnswer: 1,
				PointsReward:  150,
			},
		}
		if err := db.Create(&modules).Error; err != nil {
			return err
		}
	}

	var voucherCount int64
	if err := db.Model(&models.Voucher{}).Count(&voucherCount).Error; err != nil {
		return err
	}
	if voucherCount == 0 {
		vouchers := []models.Voucher{
			{
				Name:              "$10 Amazon Gift Card",
				Description:       "Redeem for Amazon shopping",
				CostPoints:        500,
				Code:              uuid.NewString(),
				AvailableQuantity: 10,
			},
			{
				Name:              "$25 Starbucks Gift Card",
				Description:       "Enjoy your favorite coffee",
				CostPoints:        1000,
				Code:              uuid.NewString(),
				AvailableQuantity: 5,
			},
			{
				Name:              "$50 Udemy Course Voucher",
				Description:       "Learn new skills",
				CostPoints:        2000,
				Code:              uuid.NewString(),
				AvailableQuantity: 3,
			},
		}
		if err := db.Create(&vouchers).Error; err != nil {
			return err
		}
	}

	return nil
}
