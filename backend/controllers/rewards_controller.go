package controllers

import (
	"errors"
	"learn2earn/backend/config"
	"learn2earn/backend/models"
	"learn2earn/backend/utils"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RewardsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewRewardsController(db *gorm.DB, cfg *config.Config) *RewardsController {
	return &RewardsController{DB: db, Cfg: cfg}
}

// GetVouchers godoc
// @Summary List vouchers
// @Description Returns the voucher marketplace, the caller's balance and already redeemed vouchers
// @Tags rewards
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /rewards [get]
func (rc *RewardsController) GetVouchers(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := rc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	var vouchers []models.Voucher
	if err := rc.DB.Order("cost_points").Find(&vouchers).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var redemptions []models.VoucherRedemption
	rc.DB.Where("user_id = ?", userID).Find(&redemptions)

	redeemed := make(map[uint]bool, len(redemptions))
	for _, r := range redemptions {
		redeemed[r.VoucherID] = true
	}

	result := []fiber.Map{}
	for _, voucher := range vouchers {
		result = append(result, fiber.Map{
			"id":                 voucher.ID,
			"name":               voucher.Name,
			"description":        voucher.Description,
			"cost_points":        voucher.CostPoints,
			"available_quantity": voucher.AvailableQuantity,
			"redeemed":           redeemed[voucher.ID],
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"points":   user.Points,
		"vouchers": result,
	})
}

// RedeemVoucher godoc
// @Summary Redeem a voucher
// @Description Debits the voucher cost and reveals its code; one redemption per user per voucher
// @Tags rewards
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 402 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /rewards/{id}/redeem [post]
func (rc *RewardsController) RedeemVoucher(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	voucherID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid voucher ID")
	}

	voucher, newBalance, err := models.RedeemVoucher(rc.DB, userID, uint(voucherID))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return utils.NotFound(c, "Voucher not found")
		case errors.Is(err, models.ErrAlreadyRedeemed):
			return utils.Error(c, fiber.StatusConflict, err)
		case errors.Is(err, models.ErrVoucherExhausted):
			return utils.Error(c, fiber.StatusConflict, err)
		case errors.Is(err, models.ErrInsufficientPoints):
			return utils.Error(c, fiber.StatusPaymentRequired, err)
		default:
			return utils.InternalServerError(c, "Could not redeem voucher")
		}
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"voucher": fiber.Map{
			"id":   voucher.ID,
			"name": voucher.Name,
			"code": voucher.Code,
		},
		"points_spent": voucher.CostPoints,
		"points":       newBalance,
	})
}

// CreateVoucher adds a voucher to the marketplace (admin only).
func (rc *RewardsController) CreateVoucher(c *fiber.Ctx) error {
	var input struct {
		Name              string `json:"name"`
		Description       string `json:"description"`
		CostPoints        int    `json:"cost_points"`
		Code              string `json:"code"`
		AvailableQuantity int    `json:"available_quantity"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Name == "" {
		return utils.BadRequest(c, "Name is required")
	}
	if input.CostPoints <= 0 {
		return utils.BadRequest(c, "Cost must be positive")
	}
	if input.Code == "" {
		input.Code = uuid.NewString()
	}

	voucher := models.Voucher{
		Name:              input.Name,
		Description:       input.Description,
		CostPoints:        input.CostPoints,
		Code:              input.Code,
		AvailableQuantity: input.AvailableQuantity,
	}

	if err := rc.DB.Create(&voucher).Error; err != nil {
		return utils.InternalServerError(c, "Could not create voucher")
	}

	return utils.Created(c, voucher)
}
