package api

import (
	"github.com/Mithun-AM/Exam-allocation-system/docs"
	"github.com/Mithun-AM/Exam-allocation-system/internal/api/handlers"
	"github.com/Mithun-AM/Exam-allocation-system/internal/models"
	"github.com/Mithun-AM/Exam-allocation-system/pkg/auth"
	"github.com/Mithun-AM/Exam-allocation-system/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	chatbotHandler *handlers.ChatbotHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// Importing docs registers the generated swagger spec through init().
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	adminOnly := []fiber.Handler{
		middleware.RequireAuth(jwtManager, appLogger),
		middleware.RequireRole(string(models.RoleAdmin), appLogger),
	}

	// Account creation is an admin action; the first admin comes from the
	// seed binary.
	authGroup := app.Group("/auth")
	authGroup.Post("/register", append(adminOnly, authHandler.Register)...)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// The public query endpoint works anonymously but picks up the caller
	// identity when a token is present, so faculty get personalized answers.
	chatbot := app.Group("/chatbot")
	chatbot.Post("/query", middleware.OptionalAuth(jwtManager, appLogger), chatbotHandler.Query)
	chatbot.Post("/admin", append(adminOnly, chatbotHandler.Admin)...)
	chatbot.Post("/cache-data", append(adminOnly, chatbotHandler.CacheData)...)

	return app
}
