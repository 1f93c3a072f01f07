package handlers

import (
	"fmt"
	"strings"

	"shopora/database"
	"shopora/models"
	"shopora/utils"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth reads the JWT from the `token` cookie or an Authorization
// Bearer header, validates it and loads the user into c.Locals("user").
func RequireAuth(c *fiber.Ctx) error {
	token := c.Cookies("token")
	if token == "" {
		authHeader := c.Get("Authorization")
		const prefix = "Bearer "
		if strings.HasPrefix(authHeader, prefix) {
			token = strings.TrimPrefix(authHeader, prefix)
		}
	}

	if token == "" {
		return c.Status(401).JSON(fiber.Map{"status": "error", "message": "Please login to access this resource."})
	}

	claims, err := utils.ValidateToken(token)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"status": "error", "message": "Please login to access this resource."})
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"status": "error", "message": "Please login to access this resource."})
	}

	var user models.User
	if err := database.DB.First(&user, uint(sub)).Error; err != nil {
		return c.Status(401).JSON(fiber.Map{"status": "error", "message": "Please login to access this resource."})
	}

	c.Locals("user", user)
	return c.Next()
}

// RequireRoles restricts a route to the given roles. Must run after
// RequireAuth.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals("user").(models.User)
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return c.Status(403).JSON(fiber.Map{
			"status":  "error",
			"message": fmt.Sprintf("Role: %s is not allowed to access this resource.", user.Role),
		})
	}
}

func currentUser(c *fiber.Ctx) models.User {
	return c.Locals("user").(models.User)
}
