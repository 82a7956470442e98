package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/tastebook/backend/internal/config"
	"github.com/tastebook/backend/internal/handlers"
	"github.com/tastebook/backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	categoryHandler *handlers.CategoryHandler,
	recipeHandler *handlers.RecipeHandler,
	userHandler *handlers.UserHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Filter UI lookups
	api.Get("/categories", categoryHandler.List)
	api.Get("/search-types", recipeHandler.SearchTypes)

	// Recipes: reads are public, mutations require a JWT
	api.Get("/recipes", recipeHandler.Index)
	api.Get("/recipes/:id", recipeHandler.Show)
	api.Post("/recipes", middleware.JWTProtected(cfg), recipeHandler.Store)
	api.Put("/recipes/:id", middleware.JWTProtected(cfg), recipeHandler.Update)
	api.Delete("/recipes/:id", middleware.JWTProtected(cfg), recipeHandler.Destroy)

	// Profiles render for anonymous viewers too, redacted
	api.Get("/users/:id", middleware.JWTOptional(cfg), userHandler.Show)
}
