package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"shopora/database"
	"shopora/metrics"
	"shopora/models"
	"shopora/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errInsufficientStock = errors.New("insufficient stock")

// checkout pricing defaults, overridable via the settings table
const (
	defaultTaxRate               = "0.18"
	defaultShippingFee           = "2"
	defaultFreeShippingThreshold = "50"
)

func settingDecimal(key, fallback string) decimal.Decimal {
	raw := models.GetSetting(database.DB, key, fallback)
	if d, err := decimal.NewFromString(raw); err == nil {
		return d
	}
	d, _ := decimal.NewFromString(fallback)
	return d
}

type orderItemInput struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type shippingInput struct {
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
	Pincode  string `json:"pincode"`
	Phone    string `json:"phone"`
}

// PlaceOrder prices the cart, asks the provider for a payment intent,
// then writes the order, its items, shipping info and payment row in one
// transaction. Stock is decremented here and only here, with a
// stock >= quantity guard, so two checkouts of the last unit can't both
// succeed and stock never goes negative.
func PlaceOrder(c *fiber.Ctx) error {
	var input struct {
		ShippingInfo shippingInput    `json:"shipping_info"`
		Items        []orderItemInput `json:"items"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid input"})
	}

	if len(input.Items) == 0 {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Your cart is empty."})
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Item quantity must be positive."})
		}
	}
	s := input.ShippingInfo
	if s.FullName == "" || s.Address == "" || s.Country == "" || s.Phone == "" {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Please provide complete shipping information."})
	}

	user := currentUser(c)

	taxRate := settingDecimal("tax_rate", defaultTaxRate)
	shippingFee := settingDecimal("shipping_fee", defaultShippingFee)
	freeShippingAt := settingDecimal("free_shipping_threshold", defaultFreeShippingThreshold)

	// Snapshot the products and price the cart up front. The provider
	// call below must not run while the stock rows are locked.
	itemsPrice := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		var product models.Product
		if err := database.DB.First(&product, item.ProductID).Error; err != nil {
			return c.Status(404).JSON(fiber.Map{
				"status":  "error",
				"message": fmt.Sprintf("Product not found: product %d.", item.ProductID),
			})
		}

		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			Price:     product.Price,
			Title:     product.Name,
			Image:     image,
		})
		itemsPrice = itemsPrice.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	taxPrice := itemsPrice.Mul(taxRate).Round(2)
	shippingPrice := shippingFee
	if itemsPrice.GreaterThanOrEqual(freeShippingAt) {
		shippingPrice = decimal.Zero
	}
	totalPrice := itemsPrice.Add(taxPrice).Add(shippingPrice)

	// An intent for an order that fails below is never confirmed and
	// expires unused on the provider side
	clientSecret, err := createPaymentIntent(totalPrice)
	if err != nil {
		log.Println("Payment intent error:", err)
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to initialize payment"})
	}

	var order models.Order
	var failedProduct string

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for i, item := range input.Items {
			// Guarded decrement: zero rows affected means someone else
			// got the stock first (or the product just vanished), roll
			// the whole order back
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				failedProduct = orderItems[i].Title
				return errInsufficientStock
			}
		}

		order = models.Order{
			BuyerID:       user.ID,
			ItemsPrice:    itemsPrice,
			TaxPrice:      taxPrice,
			ShippingPrice: shippingPrice,
			TotalPrice:    totalPrice,
			OrderStatus:   models.OrderStatusProcessing,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for i := range orderItems {
			orderItems[i].OrderID = order.ID
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return err
		}

		shipping := models.ShippingInfo{
			OrderID:  order.ID,
			FullName: s.FullName,
			Address:  s.Address,
			City:     s.City,
			State:    s.State,
			Country:  s.Country,
			Pincode:  s.Pincode,
			Phone:    s.Phone,
		}
		if err := tx.Create(&shipping).Error; err != nil {
			return err
		}

		payment := models.Payment{
			OrderID:         order.ID,
			PaymentIntentID: clientSecret,
			Status:          models.PaymentStatusPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		order.Payment = &payment
		order.Items = orderItems
		order.ShippingInfo = &shipping
		return nil
	})

	if err != nil {
		if errors.Is(err, errInsufficientStock) {
			return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Not enough stock for " + failedProduct + "."})
		}
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to place order"})
	}

	metrics.OrdersPlaced.Inc()
	models.LogSuccess(database.DB, fmt.Sprintf("Order #%d placed by user %d (total %s)", order.ID, user.ID, order.TotalPrice))

	// Confirmation email is best-effort
	go func(email, name string, o models.Order) {
		body := fmt.Sprintf("<p>Hi %s,</p><p>Your order #%d has been placed. Total: %s</p>", name, o.ID, o.TotalPrice)
		if err := utils.SendEmail([]string{email}, "Order Confirmation", body); err != nil {
			log.Println("Order email error:", err)
		}
	}(user.Email, user.Name, order)

	return c.Status(201).JSON(fiber.Map{
		"status":        "success",
		"message":       "Order placed successfully",
		"order_id":      order.ID,
		"total_price":   order.TotalPrice,
		"paymentIntent": order.Payment.PaymentIntentID,
	})
}

// GetMyOrders lists the caller's orders, newest first
func GetMyOrders(c *fiber.Ctx) error {
	user := currentUser(c)

	var orders []models.Order
	err := database.DB.
		Preload("Items").Preload("ShippingInfo").Preload("Payment").
		Where("buyer_id = ?", user.ID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	return c.JSON(fiber.Map{"status": "success", "myOrders": orders})
}

// GetSingleOrder returns one order. Buyers can only read their own;
// admins can read any.
func GetSingleOrder(c *fiber.Ctx) error {
	id := c.Params("id")
	user := currentUser(c)

	var order models.Order
	err := database.DB.
		Preload("Items").Preload("ShippingInfo").Preload("Payment").
		First(&order, id).Error
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"status": "error", "message": "Order not found"})
	}

	if order.BuyerID != user.ID && user.Role != models.RoleAdmin {
		return c.Status(403).JSON(fiber.Map{"status": "error", "message": "You cannot access this order."})
	}

	return c.JSON(fiber.Map{"status": "success", "orders": order})
}

// GetAllOrders lists every order for the admin dashboard
func GetAllOrders(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var total int64
	database.DB.Model(&models.Order{}).Count(&total)

	var orders []models.Order
	err := database.DB.
		Preload("Items").Preload("ShippingInfo").Preload("Payment").
		Limit(limit).Offset(offset).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// validNextStatus enforces Processing -> Shipped -> Delivered, with
// Cancelled reachable until delivery
func validNextStatus(current, next string) bool {
	switch current {
	case models.OrderStatusProcessing:
		return next == models.OrderStatusShipped || next == models.OrderStatusCancelled
	case models.OrderStatusShipped:
		return next == models.OrderStatusDelivered || next == models.OrderStatusCancelled
	}
	return false
}

// UpdateOrderStatus advances an order through its lifecycle. Cancelling
// restocks every item in the same transaction.
func UpdateOrderStatus(c *fiber.Ctx) error {
	var input struct {
		Status string `json:"status"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid input"})
	}

	var order models.Order
	if err := database.DB.Preload("Items").First(&order, c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"status": "error", "message": "Order not found"})
	}

	if !validNextStatus(order.OrderStatus, input.Status) {
		return c.Status(400).JSON(fiber.Map{
			"status":  "error",
			"message": fmt.Sprintf("Cannot move order from %s to %s.", order.OrderStatus, input.Status),
		})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if input.Status == models.OrderStatusCancelled {
			for _, item := range order.Items {
				result := tx.Model(&models.Product{}).
					Where("id = ?", item.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity))
				if result.Error != nil {
					return result.Error
				}
			}
		}
		return tx.Model(&order).Update("order_status", input.Status).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to update order"})
	}

	models.LogInfo(database.DB, fmt.Sprintf("Order #%d moved to %s", order.ID, input.Status))
	return c.JSON(fiber.Map{"status": "success", "message": "Order updated", "order": order})
}

// DeleteOrder removes an order and its dependent rows
func DeleteOrder(c *fiber.Ctx) error {
	var order models.Order
	if err := database.DB.First(&order, c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"status": "error", "message": "Order not found"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.ShippingInfo{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to delete order"})
	}

	return c.JSON(fiber.Map{"status": "success", "message": "Order deleted"})
}
