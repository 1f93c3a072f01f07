package handlers

import (
	"shopora/database"
	"shopora/models"

	"github.com/gofiber/fiber/v2"
)

// GetPublicSettings returns the store configuration the frontends need
func GetPublicSettings(c *fiber.Ctx) error {
	var settings []models.Setting
	database.DB.Find(&settings)

	// Convert to map
	sMap := make(map[string]string)
	for _, s := range settings {
		sMap[s.Key] = s.Value
	}

	return c.JSON(fiber.Map{
		"status":                  "success",
		"store_name":              sMap["store_name"],
		"currency":                sMap["currency"],
		"tax_rate":                sMap["tax_rate"],
		"shipping_fee":            sMap["shipping_fee"],
		"free_shipping_threshold": sMap["free_shipping_threshold"],
	})
}

// UpdateSettings upserts a single setting
func UpdateSettings(c *fiber.Ctx) error {
	var input struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}

	if err := c.BodyParser(&input); err != nil || input.Key == "" {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid input"})
	}

	var setting models.Setting
	// Check if exists
	if err := database.DB.Where("key = ?", input.Key).First(&setting).Error; err != nil {
		// New setting
		setting = models.Setting{Key: input.Key, Value: input.Value}
		if err := database.DB.Create(&setting).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to create setting"})
		}
	} else {
		// Update existing
		setting.Value = input.Value
		if err := database.DB.Save(&setting).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to update setting"})
		}
	}

	return c.JSON(fiber.Map{"status": "success", "data": setting})
}

// UpdateSettingsBatch updates multiple settings at once
func UpdateSettingsBatch(c *fiber.Ctx) error {
	var input map[string]string
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid input"})
	}

	tx := database.DB.Begin()

	for k, v := range input {
		var setting models.Setting
		if err := tx.Where("key = ?", k).First(&setting).Error; err != nil {
			// Create
			setting = models.Setting{Key: k, Value: v}
			if err := tx.Create(&setting).Error; err != nil {
				tx.Rollback()
				return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to create " + k})
			}
		} else {
			// Update
			setting.Value = v
			if err := tx.Save(&setting).Error; err != nil {
				tx.Rollback()
				return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to update " + k})
			}
		}
	}

	tx.Commit()
	return c.JSON(fiber.Map{"status": "success", "message": "All settings updated"})
}
