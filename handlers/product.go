package handlers

import (
	"strconv"
	"strings"

	"shopora/database"
	"shopora/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const productPageSize = 8

type productFilters struct {
	Category    string
	Search      string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	MinRating   *float64
	InStockOnly bool
	Page        int
}

func applyProductFilters(query *gorm.DB, f productFilters) *gorm.DB {
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", f.MaxPrice)
	}
	if f.MinRating != nil {
		query = query.Where("ratings >= ?", *f.MinRating)
	}
	if f.InStockOnly {
		query = query.Where("stock > 0")
	}
	return query
}

func parseFiltersFromQuery(c *fiber.Ctx) productFilters {
	f := productFilters{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	// price=min-max, either side optional
	if priceRange := c.Query("price"); priceRange != "" {
		parts := strings.SplitN(priceRange, "-", 2)
		if min, err := decimal.NewFromString(parts[0]); err == nil {
			f.MinPrice = &min
		}
		if len(parts) == 2 {
			if max, err := decimal.NewFromString(parts[1]); err == nil {
				f.MaxPrice = &max
			}
		}
	}

	if ratings := c.Query("ratings"); ratings != "" {
		if min, err := strconv.ParseFloat(ratings, 64); err == nil {
			f.MinRating = &min
		}
	}

	if c.Query("availability") == "in-stock" {
		f.InStockOnly = true
	}

	f.Page, _ = strconv.Atoi(c.Query("page", "1"))
	if f.Page < 1 {
		f.Page = 1
	}
	return f
}

func listProducts(c *fiber.Ctx, f productFilters) error {
	var products []models.Product
	var total int64

	countQuery := applyProductFilters(database.DB.Model(&models.Product{}), f)
	if err := countQuery.Count(&total).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	// Rebuild the chain for the data query (re-applying conditions is
	// safer than reusing a consumed statement)
	dataQuery := applyProductFilters(database.DB.Model(&models.Product{}), f)
	offset := (f.Page - 1) * productPageSize
	if err := dataQuery.Limit(productPageSize).Offset(offset).Order("created_at desc").Find(&products).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	var newProducts []models.Product
	database.DB.Order("created_at desc").Limit(productPageSize).Find(&newProducts)

	var topRatedProducts []models.Product
	database.DB.Where("ratings > 0").Order("ratings desc").Limit(5).Find(&topRatedProducts)

	return c.JSON(fiber.Map{
		"status":           "success",
		"products":         products,
		"totalProducts":    total,
		"newProducts":      newProducts,
		"topRatedProducts": topRatedProducts,
		"page":             f.Page,
	})
}

// GetAllProducts lists products with category/search/price/ratings/
// availability filters and pagination
func GetAllProducts(c *fiber.Ctx) error {
	return listProducts(c, parseFiltersFromQuery(c))
}

// GetSingleProduct returns a product with its reviews and reviewer info
func GetSingleProduct(c *fiber.Ctx) error {
	id := c.Params("id")

	var product models.Product
	if err := database.DB.Preload("Reviews.User").First(&product, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"status": "error", "message": "Product not found"})
	}

	return c.JSON(fiber.Map{"status": "success", "product": product})
}

// AISearchProducts parses a free-text prompt into structured filters and
// runs the normal filtered query
func AISearchProducts(c *fiber.Ctx) error {
	var input struct {
		UserPrompt string `json:"userPrompt"`
	}

	if err := c.BodyParser(&input); err != nil || strings.TrimSpace(input.UserPrompt) == "" {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Please describe what you are looking for."})
	}

	f := parseFiltersFromPrompt(input.UserPrompt)
	f.Page = 1
	return listProducts(c, f)
}

// parseFiltersFromPrompt extracts price bounds, rating hints and a known
// category from a shopping prompt like "a laptop under $800 with good
// reviews".
func parseFiltersFromPrompt(prompt string) productFilters {
	var f productFilters
	words := strings.Fields(strings.ToLower(prompt))

	numberAfter := func(i int) (decimal.Decimal, bool) {
		for j := i + 1; j < len(words) && j <= i+2; j++ {
			cleaned := strings.Trim(words[j], "$.,!?")
			if d, err := decimal.NewFromString(cleaned); err == nil {
				return d, true
			}
		}
		return decimal.Decimal{}, false
	}

	for i, w := range words {
		switch strings.Trim(w, ".,!?") {
		case "under", "below", "max", "cheaper":
			if d, ok := numberAfter(i); ok {
				f.MaxPrice = &d
			}
		case "over", "above", "min":
			if d, ok := numberAfter(i); ok {
				f.MinPrice = &d
			}
		}
	}

	lower := strings.ToLower(prompt)
	if strings.Contains(lower, "top rated") || strings.Contains(lower, "best") ||
		strings.Contains(lower, "good reviews") || strings.Contains(lower, "highly rated") {
		minRating := 4.0
		f.MinRating = &minRating
	}
	if strings.Contains(lower, "in stock") || strings.Contains(lower, "available") {
		f.InStockOnly = true
	}

	// Match against the categories we actually sell
	var categories []string
	database.DB.Model(&models.Product{}).Distinct("category").Pluck("category", &categories)
	for _, cat := range categories {
		if cat != "" && strings.Contains(lower, strings.ToLower(cat)) {
			f.Category = cat
			break
		}
	}

	// Fall back to a name search when nothing structured matched
	if f.Category == "" && f.MaxPrice == nil && f.MinPrice == nil {
		for _, w := range words {
			cleaned := strings.Trim(w, "$.,!?")
			if len(cleaned) >= 4 && !isStopWord(cleaned) {
				f.Search = cleaned
				break
			}
		}
	}

	return f
}

func isStopWord(w string) bool {
	switch w {
	case "with", "that", "have", "want", "need", "looking", "something", "show", "find", "good", "best", "under", "over", "cheap", "please":
		return true
	}
	return false
}

// recomputeProductRating refreshes the derived mean inside the caller's
// transaction, mirroring the AFTER INSERT/UPDATE/DELETE trigger of the
// reviews table.
func recomputeProductRating(tx *gorm.DB, productID uint) error {
	var avg float64
	row := tx.Model(&models.Review{}).
		Where("product_id = ?", productID).
		Select("COALESCE(AVG(rating), 0)").
		Row()
	if err := row.Scan(&avg); err != nil {
		return err
	}
	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("ratings", avg).Error
}

// PostReview creates or overwrites the caller's review for a product and
// recomputes the product's mean rating in the same transaction
func PostReview(c *fiber.Ctx) error {
	var input struct {
		Rating  float64 `json:"rating"`
		Comment string  `json:"comment"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid input"})
	}

	if input.Rating < 0 || input.Rating > 5 {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Rating must be between 0 and 5."})
	}
	if strings.TrimSpace(input.Comment) == "" {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Comment is required."})
	}

	productID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid product id"})
	}

	user := currentUser(c)

	var product models.Product
	if err := database.DB.First(&product, productID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"status": "error", "message": "Product not found"})
	}

	var review models.Review
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("product_id = ? AND user_id = ?", productID, user.ID).First(&review)
		if result.Error != nil {
			review = models.Review{
				ProductID: uint(productID),
				UserID:    user.ID,
				Rating:    input.Rating,
				Comment:   input.Comment,
			}
			if err := tx.Create(&review).Error; err != nil {
				return err
			}
		} else {
			review.Rating = input.Rating
			review.Comment = input.Comment
			if err := tx.Save(&review).Error; err != nil {
				return err
			}
		}
		return recomputeProductRating(tx, uint(productID))
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to save review"})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Review posted",
		"review": fiber.Map{
			"id":         review.ID,
			"product_id": review.ProductID,
			"rating":     review.Rating,
			"comment":    review.Comment,
			"user": fiber.Map{
				"id":     user.ID,
				"name":   user.Name,
				"avatar": user.Avatar,
			},
		},
	})
}

// DeleteReview removes the caller's review for a product and recomputes
// the mean (0 when no reviews remain)
func DeleteReview(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid product id"})
	}

	user := currentUser(c)

	var review models.Review
	if err := database.DB.Where("product_id = ? AND user_id = ?", productID, user.ID).First(&review).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"status": "error", "message": "Review not found"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return recomputeProductRating(tx, uint(productID))
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to delete review"})
	}

	return c.JSON(fiber.Map{"status": "success", "message": "Review deleted"})
}
