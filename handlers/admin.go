package handlers

import (
	"math"
	"strconv"
	"time"

	"shopora/database"
	"shopora/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// GetAllUsers returns a paginated, searchable list of users for the
// dashboard
func GetAllUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	search := c.Query("search", "")

	var users []models.User
	var total int64

	// Base Query
	query := database.DB.Model(&models.User{})

	if search != "" {
		searchTerm := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", searchTerm, searchTerm)
	}

	// Count total users (filtered)
	if err := query.Count(&total).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	// Fetch paginated users (filtered)
	if err := query.Limit(limit).Offset(offset).Order("created_at desc").Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"users":  users,
		"page":   page,
		"limit":  limit,
		"total":  total,
		"pages":  math.Ceil(float64(total) / float64(limit)),
	})
}

// DeleteUser soft-deletes a user
func DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "User ID is required"})
	}

	result := database.DB.Delete(&models.User{}, id)
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to delete user"})
	}

	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"status": "error", "message": "User not found"})
	}

	models.LogInfo(database.DB, "User "+id+" deleted by admin")
	return c.JSON(fiber.Map{"status": "success", "message": "User deleted successfully"})
}

type topProductRow struct {
	ProductID uint   `json:"product_id"`
	Title     string `json:"title"`
	TotalSold int64  `json:"total_sold"`
}

// GetDashboardStats aggregates the numbers behind the dashboard widgets:
// totals, revenue over paid orders, per-status counts, last 12 months of
// sales and the top selling products.
func GetDashboardStats(c *fiber.Ctx) error {
	var totalUsers, totalProducts, totalOrders int64
	database.DB.Model(&models.User{}).Count(&totalUsers)
	database.DB.Model(&models.Product{}).Count(&totalProducts)
	database.DB.Model(&models.Order{}).Count(&totalOrders)

	statusCounts := make(map[string]int64)
	for _, status := range []string{
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	} {
		var n int64
		database.DB.Model(&models.Order{}).Where("order_status = ?", status).Count(&n)
		statusCounts[status] = n
	}

	// Revenue and monthly buckets over paid orders only
	// Anchor on the first of the current month before stepping back:
	// AddDate from the 29th-31st normalizes into the next month
	var paidOrders []models.Order
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
	if err := database.DB.Where("paid_at IS NOT NULL").Find(&paidOrders).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	totalRevenue := decimal.Zero
	type monthBucket struct {
		Month  string          `json:"month"`
		Total  decimal.Decimal `json:"total"`
		Orders int64           `json:"orders"`
	}
	buckets := make(map[string]*monthBucket)
	for i := 0; i < 12; i++ {
		m := monthStart.AddDate(0, i, 0).Format("2006-01")
		buckets[m] = &monthBucket{Month: m, Total: decimal.Zero}
	}

	for _, order := range paidOrders {
		totalRevenue = totalRevenue.Add(order.TotalPrice)
		m := order.PaidAt.Format("2006-01")
		if bucket, ok := buckets[m]; ok {
			bucket.Total = bucket.Total.Add(order.TotalPrice)
			bucket.Orders++
		}
	}

	monthlySales := make([]monthBucket, 0, 12)
	for i := 0; i < 12; i++ {
		m := monthStart.AddDate(0, i, 0).Format("2006-01")
		monthlySales = append(monthlySales, *buckets[m])
	}

	var topProducts []topProductRow
	database.DB.Model(&models.OrderItem{}).
		Select("product_id, title, SUM(quantity) as total_sold").
		Group("product_id, title").
		Order("total_sold desc").
		Limit(5).
		Scan(&topProducts)

	return c.JSON(fiber.Map{
		"status": "success",
		"stats": fiber.Map{
			"total_users":         totalUsers,
			"total_products":      totalProducts,
			"total_orders":        totalOrders,
			"total_revenue":       totalRevenue,
			"order_status_counts": statusCounts,
			"monthly_sales":       monthlySales,
			"top_products":        topProducts,
		},
	})
}

// GetSystemLogs returns recent audit rows for the dashboard
func GetSystemLogs(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var logs []models.SystemLog
	if err := database.DB.Order("created_at desc").Limit(limit).Find(&logs).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": logs})
}
