package routes

import (
	"learn2earn/backend/config"
	"learn2earn/backend/controllers"
	"learn2earn/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Health check
	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "message": "Server is running"})
	})

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg)
	app.Get("/api/progress", authMiddleware, progressController.GetProgress)

	// Modules routes
	modulesController := controllers.NewModulesController(db, cfg)
	modules := app.Group("/api/modules", authMiddleware)
	modules.Get("/", modulesController.GetModules)
	modules.Get("/:id", modulesController.GetModuleDetails)
	modules.Post("/:id/submit", modulesController.SubmitQuiz)

	// Rewards routes
	rewardsController := controllers.NewRewardsController(db, cfg)
	rewards := app.Group("/api/rewards", authMiddleware)
	rewards.Get("/", rewardsController.GetVouchers)
	rewards.Post("/:id/redeem", rewardsController.RedeemVoucher)

	// Admin routes
	adminModules := app.Group("/api/admin/modules", authMiddleware, adminMiddleware)
	adminModules.Post("/", modulesController.CreateModule)
	adminModules.Put("/:id", modulesController.UpdateModule)

	adminRewards := app.Group("/api/admin/vouchers", authMiddleware, adminMiddleware)
	adminRewards.Post("/", rewardsController.CreateVoucher)
}
