package handlers

import (
	"shopora/database"
	"shopora/models"

	"github.com/gofiber/fiber/v2"
)

// AddToWishlist saves a product to the caller's wishlist
func AddToWishlist(c *fiber.Ctx) error {
	var input struct {
		ProductID uint `json:"product_id"`
	}

	if err := c.BodyParser(&input); err != nil || input.ProductID == 0 {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid input"})
	}

	user := currentUser(c)

	// Already saved? Treat as success.
	var count int64
	database.DB.Model(&models.Wishlist{}).Where("user_id = ? AND product_id = ?", user.ID, input.ProductID).Count(&count)
	if count > 0 {
		return c.JSON(fiber.Map{"status": "success", "message": "Already in wishlist"})
	}

	var product models.Product
	if err := database.DB.First(&product, input.ProductID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"status": "error", "message": "Product not found"})
	}

	entry := models.Wishlist{
		UserID:    user.ID,
		ProductID: input.ProductID,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to save wishlist entry"})
	}

	return c.JSON(fiber.Map{"status": "success"})
}

// RemoveFromWishlist removes a product from the caller's wishlist
func RemoveFromWishlist(c *fiber.Ctx) error {
	productID := c.Params("productId")
	user := currentUser(c)

	result := database.DB.Where("user_id = ? AND product_id = ?", user.ID, productID).Delete(&models.Wishlist{})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	return c.JSON(fiber.Map{"status": "success"})
}

// GetWishlist fetches the caller's wishlist with products preloaded
func GetWishlist(c *fiber.Ctx) error {
	user := currentUser(c)

	var entries []models.Wishlist
	if err := database.DB.Preload("Product").Where("user_id = ?", user.ID).Order("created_at desc").Find(&entries).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   entries,
	})
}

// CheckWishlist reports whether a product is in the caller's wishlist
func CheckWishlist(c *fiber.Ctx) error {
	productID := c.Params("productId")
	user := currentUser(c)

	var count int64
	database.DB.Model(&models.Wishlist{}).Where("user_id = ? AND product_id = ?", user.ID, productID).Count(&count)

	return c.JSON(fiber.Map{
		"status": "success",
		"exists": count > 0,
	})
}
