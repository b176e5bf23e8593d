package controllers

import (
	"learn2earn/backend/config"
	"learn2earn/backend/models"
	"learn2earn/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg}
}

// GetProgress godoc
// @Summary Get user progress
// @Description Returns completed modules, redemption history and the point totals behind the balance
// @Tags progress
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var user models.User
	if err := pc.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	var progress []models.UserProgress
	if err := pc.DB.Where("user_id = ? AND completed = ?", userID, true).
		Order("completed_at").Find(&progress).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	totalEarned := 0
	completedModules := []fiber.Map{}
	for _, p := range progress {
		var module models.Module
		if err := pc.DB.First(&module, p.ModuleID).Error; err != nil {
			continue
		}
		totalEarned += module.PointsReward
		completedModules = append(completedModules, fiber.Map{
			"module_id":     module.ID,
			"title":         module.Title,
			"points_reward": module.PointsReward,
			"completed_at":  p.CompletedAt,
		})
	}

	var redemptions []models.VoucherRedemption
	pc.DB.Where("user_id = ?", userID).Order("redeemed_at").Find(&redemptions)

	totalSpent := 0
	redemptionHistory := []fiber.Map{}
	for _, r := range redemptions {
		var voucher models.Voucher
		if err := pc.DB.First(&voucher, r.VoucherID).Error; err != nil {
			continue
		}
		totalSpent += r.PointsSpent
		redemptionHistory = append(redemptionHistory, fiber.Map{
			"voucher_id":   voucher.ID,
			"name":         voucher.Name,
			"points_spent": r.PointsSpent,
			"redeemed_at":  r.RedeemedAt,
		})
	}

	return c.JSON(fiber.Map{
		"points":             user.Points,
		"total_earned":       totalEarned,
		"total_spent":        totalSpent,
		"completed_modules":  completedModules,
		"redemption_history": redemptionHistory,
	})
}
