package main

import (
	"log"
	"os"
	"strings"
	"time"

	"shopora/database"
	"shopora/handlers"
	"shopora/metrics"
	"shopora/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/joho/godotenv"
)

func allowedOrigins() string {
	origins := []string{"http://localhost:5173", "http://localhost:5174"}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		origins = append(origins, frontend)
	}
	if dashboard := os.Getenv("DASHBOARD_URL"); dashboard != "" {
		origins = append(origins, dashboard)
	}
	return strings.Join(origins, ",")
}

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.JSONErrorHandler,
	})

	// Security Middleware
	app.Use(helmet.New())

	// Rate Limiting (100 reqs / min)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() // Limit by IP
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status":  "error",
				"message": "Too many requests, please try again later.",
			})
		},
	}))

	// CORS: cookies cross origins need credentials + explicit origins
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, PATCH, OPTIONS",
		AllowCredentials: true,
	}))

	// Serve uploaded product images
	app.Static("/uploads", "public/uploads")

	// Database
	database.Connect()
	if err := models.MigrateAll(database.DB); err != nil {
		log.Fatal("Migration failed: ", err)
	}

	// Prometheus
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// Routes
	handlers.RegisterRoutes(app)

	// 404 for anything that didn't match
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"status":  "error",
			"message": "Route " + c.OriginalURL() + " not found",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Println("Starting server on :" + port + "...")
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Server Listen Error: ", err)
	}
}
