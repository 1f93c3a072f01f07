package handlers

import (
	"fmt"
	"path/filepath"
	"time"

	"shopora/database"
	"shopora/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateProduct adds a catalog entry
func CreateProduct(c *fiber.Ctx) error {
	var input struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Price       decimal.Decimal `json:"price"`
		Stock       int             `json:"stock"`
		Images      []string        `json:"images"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid input"})
	}

	if input.Name == "" {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Product name is required."})
	}
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Price must be positive."})
	}
	if input.Stock < 0 {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Stock cannot be negative."})
	}

	product := models.Product{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Stock:       input.Stock,
		Images:      input.Images,
	}

	if err := database.DB.Create(&product).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to create product"})
	}

	return c.Status(201).JSON(fiber.Map{"status": "success", "message": "Product created", "product": product})
}

// UpdateProduct edits a catalog entry. Historical order items keep their
// snapshots, so price edits never rewrite old orders.
func UpdateProduct(c *fiber.Ctx) error {
	var input struct {
		Name        string           `json:"name"`
		Description string           `json:"description"`
		Category    string           `json:"category"`
		Price       *decimal.Decimal `json:"price"`
		Stock       *int             `json:"stock"`
		Images      []string         `json:"images"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid input"})
	}

	var product models.Product
	if err := database.DB.First(&product, c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"status": "error", "message": "Product not found"})
	}

	if input.Name != "" {
		product.Name = input.Name
	}
	if input.Description != "" {
		product.Description = input.Description
	}
	if input.Category != "" {
		product.Category = input.Category
	}
	if input.Price != nil {
		if input.Price.LessThanOrEqual(decimal.Zero) {
			return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Price must be positive."})
		}
		product.Price = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Stock cannot be negative."})
		}
		product.Stock = *input.Stock
	}
	if input.Images != nil {
		product.Images = input.Images
	}

	if err := database.DB.Save(&product).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to update product"})
	}

	return c.JSON(fiber.Map{"status": "success", "message": "Product updated", "product": product})
}

// DeleteProduct removes a product along with its reviews and wishlist
// entries. Order item snapshots are kept.
func DeleteProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := database.DB.First(&product, c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"status": "error", "message": "Product not found"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.Wishlist{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to delete product"})
	}

	return c.JSON(fiber.Map{"status": "success", "message": "Product deleted"})
}

// UploadFile handles product image uploads for admin
func UploadFile(c *fiber.Ctx) error {
	// 1. Get the file
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "No file uploaded"})
	}

	// 2. Validate file type (simple extension check)
	ext := filepath.Ext(file.Filename)
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".webp" {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid file type. Only images allowed."})
	}

	// 3. Generate unique filename
	filename := fmt.Sprintf("%d_%s%s", time.Now().Unix(), uuid.New().String(), ext)

	// 4. Save to public/uploads
	savePath := filepath.Join("public", "uploads", filename)

	if err := c.SaveFile(file, savePath); err != nil {
		fmt.Println("Upload Error:", err)
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to save file"})
	}

	// 5. Return the URL (relative to public)
	fileURL := fmt.Sprintf("/uploads/%s", filename)
	return c.JSON(fiber.Map{
		"status": "success",
		"url":    fileURL,
	})
}
