package controllers

import (
	"encoding/json"
	"errors"
	"learn2earn/backend/config"
	"learn2earn/backend/models"
	"learn2earn/backend/utils"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ModulesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewModulesController(db *gorm.DB, cfg *config.Config) *ModulesController {
	return &ModulesController{DB: db, Cfg: cfg}
}

// GetModules godoc
// @Summary List learning modules
// @Description Returns the ordered module catalog with per-user completion flags
// @Tags modules
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /modules [get]
func (mc *ModulesController) GetModules(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, mc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var modules []models.Module
	if err := mc.DB.Order("order_index").Find(&modules).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var progress []models.UserProgress
	mc.DB.Where("user_id = ? AND completed = ?", userID, true).Find(&progress)

	completed := make(map[uint]bool, len(progress))
	for _, p := range progress {
		completed[p.ModuleID] = true
	}

	result := []fiber.Map{}
	for _, module := range modules {
		result = append(result, fiber.Map{
			"id":            module.ID,
			"title":         module.Title,
			"description":   module.Description,
			"order":         module.OrderIndex,
			"points_reward": module.PointsReward,
			"completed":     completed[module.ID],
		})
	}

	return c.JSON(result)
}

// GetModuleDetails godoc
// @Summary Get module content and quiz
// @Description Returns the module content and its quiz; the correct option index is withheld
// @Tags modules
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /modules/{id} [get]
func (mc *ModulesController) GetModuleDetails(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, mc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	moduleID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid module ID",
		})
	}

	var module models.Module
	if err := mc.DB.First(&module, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Module not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var options []string
	json.Unmarshal([]byte(module.Options), &options)

	var progress models.UserProgress
	isCompleted := false
	if err := mc.DB.Where("user_id = ? AND module_id = ?", userID, module.ID).First(&progress).Error; err == nil {
		isCompleted = progress.Completed
	}

	return c.JSON(fiber.Map{
		"module": fiber.Map{
			"id":            module.ID,
			"title":         module.Title,
			"description":   module.Description,
			"content":       module.Content,
			"order":         module.OrderIndex,
			"points_reward": module.PointsReward,
			"question":      module.Question,
			"options":       options,
		},
		"completed": isCompleted,
	})
}

// SubmitQuiz godoc
// @Summary Submit a quiz answer
// @Description Evaluates the selected option; the first correct answer credits the module reward
// @Tags modules
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Selected option index"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /modules/{id}/submit [post]
func (mc *ModulesController) SubmitQuiz(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, mc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	moduleID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid module ID",
		})
	}

	type AnswerInput struct {
		Answer *int `json:"answer"`
	}

	var input AnswerInput
	if err := c.BodyParser(&input); err != nil || input.Answer == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "An answer index is required",
		})
	}

	var module models.Module
	if err := mc.DB.First(&module, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Module not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var options []string
	json.Unmarshal([]byte(module.Options), &options)
	if *input.Answer < 0 || *input.Answer >= len(options) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Answer index out of range",
		})
	}

	if *input.Answer != module.CorrectAnswer {
		var user models.User
		mc.DB.First(&user, userID)

		// A wrong answer reveals the correct option and changes nothing
		return c.JSON(fiber.Map{
			"correct":        false,
			"correct_answer": module.CorrectAnswer,
			"points_awarded": 0,
			"points":         user.Points,
		})
	}

	awarded, err := models.CompleteModule(mc.DB, userID, &module)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update progress",
		})
	}

	var user models.User
	if err := mc.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"correct":        true,
		"points_awarded": awarded,
		"points":         user.Points,
	})
}

// CreateModule adds a learning module to the catalog (admin only).
func (mc *ModulesController) CreateModule(c *fiber.Ctx) error {
	var input struct {
		Title         string   `json:"title"`
		Description   string   `json:"description"`
		Content       string   `json:"content"`
		OrderIndex    int      `json:"order"`
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer int      `json:"correct_answer"`
		PointsReward  int      `json:"points_reward"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title == "" || input.Question == "" {
		return utils.BadRequest(c, "Title and question are required")
	}
	if input.CorrectAnswer < 0 || input.CorrectAnswer >= len(input.Options) {
		return utils.BadRequest(c, "Invalid correct answer index")
	}
	if input.PointsReward <= 0 {
		return utils.BadRequest(c, "Points reward must be positive")
	}

	optionsJson, err := json.Marshal(input.Options)
	if err != nil {
		return utils.InternalServerError(c, "Could not encode options")
	}

	module := models.Module{
		Title:         input.Title,
		Description:   input.Description,
		Content:       input.Content,
		OrderIndex:    input.OrderIndex,
		Question:      input.Question,
		Options:       string(optionsJson),
		CorrectAnswer: input.CorrectAnswer,
		PointsReward:  input.PointsReward,
	}

	if err := mc.DB.Create(&module).Error; err != nil {
		return utils.InternalServerError(c, "Could not create module")
	}

	return utils.Created(c, module)
}

// UpdateModule edits module fields (admin only). Empty fields keep
// their current values.
func (mc *ModulesController) UpdateModule(c *fiber.Ctx) error {
	moduleID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid module ID")
	}

	var input struct {
		Title         string   `json:"title"`
		Description   string   `json:"description"`
		Content       string   `json:"content"`
		OrderIndex    int      `json:"order"`
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer *int     `json:"correct_answer"`
		PointsReward  int      `json:"points_reward"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var module models.Module
	if err := mc.DB.First(&module, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Module not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if input.Title != "" {
		module.Title = input.Title
	}
	if input.Description != "" {
		module.Description = input.Description
	}
	if input.Content != "" {
		module.Content = input.Content
	}
	if input.OrderIndex != 0 {
		module.OrderIndex = input.OrderIndex
	}
	if input.Question != "" {
		module.Question = input.Question
	}
	if input.Options != nil {
		optionsJson, err := json.Marshal(input.Options)
		if err != nil {
			return utils.InternalServerError(c, "Could not encode options")
		}
		module.Options = string(optionsJson)
	}
	if input.CorrectAnswer != nil {
		module.CorrectAnswer = *input.CorrectAnswer
	}
	if input.PointsReward > 0 {
		module.PointsReward = input.PointsReward
	}

	// The correct index must point into the option list after any edit
	var options []string
	json.Unmarshal([]byte(module.Options), &options)
	if module.CorrectAnswer < 0 || module.CorrectAnswer >= len(options) {
		return utils.BadRequest(c, "Invalid correct answer index")
	}

	if err := mc.DB.Save(&module).Error; err != nil {
		return utils.InternalServerError(c, "Could not update module")
	}

	return utils.Success(c, fiber.StatusOK, module)
}
