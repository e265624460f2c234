package routes

import (
	"log"
	"os"

	"teamnest/config"
	controller "teamnest/controllers"
	"teamnest/middleware"
	"teamnest/repositories"
	"teamnest/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, authController *controller.AuthController) {
	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no session required)
	auth.Post("/signin", middleware.SignInRateLimiter(), authController.RequestSignIn)
	auth.Get("/callback", authController.SignInCallback)
	auth.Post("/refresh", authController.RefreshToken)

	// Protected auth endpoints (require a valid session)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", authController.Logout)
	protectedAuth.Get("/me", authController.GetCurrentUser)
}

func SetupAPIRoutes(app *fiber.App, inviteController *controller.InviteController) {
	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Invite lifecycle routes. Accept and reject identify the token by
	// the inviteId query parameter.
	invites := api.Group("/invites")
	invites.Get("/", inviteController.ListInvites)
	invites.Post("/", middleware.InviteRateLimiter(), inviteController.CreateInvite)
	invites.Put("/", inviteController.AcceptInvite)
	invites.Delete("/", inviteController.RejectInvite)

	// WebSocket stream of invite events for the session user
	invites.Get("/events", websocket.New(inviteController.HandleInviteEvents))
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	inviteRepo := repositories.NewInviteRepository(db)
	userRepo := repositories.NewUserRepository(db)
	mailer := utils.NewMailer(config.AppConfig)
	hub := controller.NewInviteHub()

	authController := controller.NewAuthController(userRepo, mailer,
		log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile))
	inviteController := controller.NewInviteController(inviteRepo, mailer, hub,
		log.New(os.Stdout, "INVITE: ", log.Ldate|log.Ltime|log.Lshortfile))

	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app, authController)
	SetupAPIRoutes(app, inviteController)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"ok":      false,
			"message": "The requested resource was not found",
		})
	})
}
