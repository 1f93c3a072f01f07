package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopora/database"
	"shopora/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shippingPayload() fiber.Map {
	return fiber.Map{
		"full_name": "Test Buyer",
		"address":   "1 Main St",
		"city":      "Springfield",
		"state":     "OR",
		"country":   "USA",
		"pincode":   "97477",
		"phone":     "555-0100",
	}
}

// placeOrder submits a checkout for the given items and returns the
// response body
func placeOrder(t *testing.T, app *fiber.App, token string, items []fiber.Map) (*http.Response, map[string]interface{}) {
	t.Helper()
	return doRequest(t, app, "POST", "/api/v1/order/new", fiber.Map{
		"shipping_info": shippingPayload(),
		"items":         items,
	}, token)
}

func TestPlaceOrderTotals(t *testing.T) {
	app := setupTestApp(t)
	token, _ := registerUser(t, app, "Buyer", "buyer@example.com", "password1")
	product := createProduct(t, "Charger", "Electronics", "10.00", 5)

	resp, body := placeOrder(t, app, token, []fiber.Map{
		{"product_id": product.ID, "quantity": 3},
	})
	require.Equal(t, 201, resp.StatusCode)
	assert.NotEmpty(t, body["paymentIntent"])

	// 30 items + 5.40 tax (18%) + 2 shipping (under the free threshold)
	requireDecimal(t, "37.40", body["total_price"])

	orderID := uint(body["order_id"].(float64))
	var order models.Order
	require.NoError(t, database.DB.Preload("Items").Preload("ShippingInfo").Preload("Payment").First(&order, orderID).Error)

	assert.True(t, order.ItemsPrice.Equal(order.Items[0].Price.Mul(dec("3"))))
	assert.True(t, order.TotalPrice.Equal(order.ItemsPrice.Add(order.TaxPrice).Add(order.ShippingPrice)))
	assert.Equal(t, models.OrderStatusProcessing, order.OrderStatus)
	assert.Nil(t, order.PaidAt, "order must not be paid before the webhook")
	require.NotNil(t, order.Payment)
	assert.Equal(t, models.PaymentStatusPending, order.Payment.Status)
	require.NotNil(t, order.ShippingInfo)
	assert.Equal(t, "Test Buyer", order.ShippingInfo.FullName)

	// Item snapshot
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Charger", order.Items[0].Title)
	assert.Equal(t, 3, order.Items[0].Quantity)

	// Stock moved exactly once
	var stored models.Product
	require.NoError(t, database.DB.First(&stored, product.ID).Error)
	assert.Equal(t, 2, stored.Stock)
}

func TestPlaceOrderFreeShipping(t *testing.T) {
	app := setupTestApp(t)
	token, _ := registerUser(t, app, "Buyer", "buyer2@example.com", "password1")
	product := createProduct(t, "Duffel", "Apparel", "50.00", 5)

	resp, body := placeOrder(t, app, token, []fiber.Map{
		{"product_id": product.ID, "quantity": 1},
	})
	require.Equal(t, 201, resp.StatusCode)

	// At the threshold shipping is free: 50 + 9 tax + 0
	requireDecimal(t, "59.00", body["total_price"])
}

func TestPlaceOrderUsesSettingsOverrides(t *testing.T) {
	app := setupTestApp(t)
	token, _ := registerUser(t, app, "Buyer", "buyer3@example.com", "password1")
	product := createProduct(t, "Socks", "Apparel", "10.00", 5)

	require.NoError(t, database.DB.Create(&models.Setting{Key: "tax_rate", Value: "0.10"}).Error)
	require.NoError(t, database.DB.Create(&models.Setting{Key: "shipping_fee", Value: "5"}).Error)

	resp, body := placeOrder(t, app, token, []fiber.Map{
		{"product_id": product.ID, "quantity": 1},
	})
	require.Equal(t, 201, resp.StatusCode)

	// 10 + 1 tax + 5 shipping
	requireDecimal(t, "16.00", body["total_price"])
}

func TestPlaceOrderValidation(t *testing.T) {
	app := setupTestApp(t)
	token, _ := registerUser(t, app, "Buyer", "buyer4@example.com", "password1")
	product := createProduct(t, "Lantern", "Outdoors", "19.99", 5)

	// Auth required
	resp, _ := placeOrder(t, app, "", []fiber.Map{{"product_id": product.ID, "quantity": 1}})
	assert.Equal(t, 401, resp.StatusCode)

	// Empty cart
	resp, _ = placeOrder(t, app, token, []fiber.Map{})
	assert.Equal(t, 400, resp.StatusCode)

	// Non-positive quantity
	resp, _ = placeOrder(t, app, token, []fiber.Map{{"product_id": product.ID, "quantity": 0}})
	assert.Equal(t, 400, resp.StatusCode)

	// Incomplete shipping info
	resp, _ = doRequest(t, app, "POST", "/api/v1/order/new", fiber.Map{
		"shipping_info": fiber.Map{"full_name": "X"},
		"items":         []fiber.Map{{"product_id": product.ID, "quantity": 1}},
	}, token)
	assert.Equal(t, 400, resp.StatusCode)

	// Unknown product
	resp, _ = placeOrder(t, app, token, []fiber.Map{{"product_id": 9999, "quantity": 1}})
	assert.Equal(t, 404, resp.StatusCode)
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	app := setupTestApp(t)
	token, _ := registerUser(t, app, "Buyer", "buyer5@example.com", "password1")
	plenty := createProduct(t, "Bottle", "Outdoors", "24.99", 100)
	scarce := createProduct(t, "Keyboard", "Electronics", "89.00", 2)

	resp, body := placeOrder(t, app, token, []fiber.Map{
		{"product_id": plenty.ID, "quantity": 3},
		{"product_id": scarce.ID, "quantity": 5},
	})
	require.Equal(t, 400, resp.StatusCode)
	assert.Contains(t, body["message"], "Keyboard")

	// The whole transaction rolled back: nothing persisted, earlier
	// decrements undone
	var orders int64
	database.DB.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders)

	// Fresh structs per lookup: reusing one would leak its primary key
	// into the next query's conditions
	var storedPlenty, storedScarce models.Product
	require.NoError(t, database.DB.First(&storedPlenty, plenty.ID).Error)
	assert.Equal(t, 100, storedPlenty.Stock)
	require.NoError(t, database.DB.First(&storedScarce, scarce.ID).Error)
	assert.Equal(t, 2, storedScarce.Stock)
}

func TestPlaceOrderLastUnit(t *testing.T) {
	app := setupTestApp(t)
	tokenA, _ := registerUser(t, app, "First", "first@example.com", "password1")
	tokenB, _ := registerUser(t, app, "Second", "second@example.com", "password1")
	product := createProduct(t, "Beanie", "Apparel", "28.00", 1)

	resp, _ := placeOrder(t, app, tokenA, []fiber.Map{{"product_id": product.ID, "quantity": 1}})
	require.Equal(t, 201, resp.StatusCode)

	// The second buyer finds the shelf empty, never negative
	resp, _ = placeOrder(t, app, tokenB, []fiber.Map{{"product_id": product.ID, "quantity": 1}})
	assert.Equal(t, 400, resp.StatusCode)

	var stored models.Product
	require.NoError(t, database.DB.First(&stored, product.ID).Error)
	assert.Equal(t, 0, stored.Stock)
}

func TestOrderAccessControl(t *testing.T) {
	app := setupTestApp(t)
	buyerToken, _ := registerUser(t, app, "Owner", "owner@example.com", "password1")
	otherToken, _ := registerUser(t, app, "Other", "other@example.com", "password1")
	adminToken := registerAdmin(t, app, "admin@example.com")
	product := createProduct(t, "Lamp", "Home", "52.40", 5)

	resp, body := placeOrder(t, app, buyerToken, []fiber.Map{{"product_id": product.ID, "quantity": 1}})
	require.Equal(t, 201, resp.StatusCode)
	orderID := uint(body["order_id"].(float64))

	orderURL := fmt.Sprintf("/api/v1/order/%d", orderID)

	resp, _ = doRequest(t, app, "GET", orderURL, nil, buyerToken)
	assert.Equal(t, 200, resp.StatusCode)

	resp, _ = doRequest(t, app, "GET", orderURL, nil, otherToken)
	assert.Equal(t, 403, resp.StatusCode)

	resp, _ = doRequest(t, app, "GET", orderURL, nil, adminToken)
	assert.Equal(t, 200, resp.StatusCode)

	resp, _ = doRequest(t, app, "GET", "/api/v1/order/9999", nil, buyerToken)
	assert.Equal(t, 404, resp.StatusCode)

	// My orders only lists the caller's
	resp, body = doRequest(t, app, "GET", "/api/v1/order/orders/me", nil, buyerToken)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, body["myOrders"], 1)

	resp, body = doRequest(t, app, "GET", "/api/v1/order/orders/me", nil, otherToken)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, body["myOrders"], 0)

	// The admin list is admin only
	resp, _ = doRequest(t, app, "GET", "/api/v1/order/admin/getall", nil, buyerToken)
	assert.Equal(t, 403, resp.StatusCode)

	resp, body = doRequest(t, app, "GET", "/api/v1/order/admin/getall", nil, adminToken)
	require.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 1, body["total"])
}

func TestOrderStatusLifecycle(t *testing.T) {
	app := setupTestApp(t)
	buyerToken, _ := registerUser(t, app, "Buyer", "buyer6@example.com", "password1")
	adminToken := registerAdmin(t, app, "admin@example.com")
	product := createProduct(t, "Kettle", "Home", "30.00", 10)

	resp, body := placeOrder(t, app, buyerToken, []fiber.Map{{"product_id": product.ID, "quantity": 4}})
	require.Equal(t, 201, resp.StatusCode)
	orderID := uint(body["order_id"].(float64))
	updateURL := fmt.Sprintf("/api/v1/order/admin/update/%d", orderID)

	// Can't skip straight to Delivered
	resp, _ = doRequest(t, app, "PUT", updateURL, fiber.Map{"status": models.OrderStatusDelivered}, adminToken)
	assert.Equal(t, 400, resp.StatusCode)

	resp, _ = doRequest(t, app, "PUT", updateURL, fiber.Map{"status": models.OrderStatusShipped}, adminToken)
	require.Equal(t, 200, resp.StatusCode)

	resp, _ = doRequest(t, app, "PUT", updateURL, fiber.Map{"status": models.OrderStatusDelivered}, adminToken)
	require.Equal(t, 200, resp.StatusCode)

	// Delivered is terminal
	resp, _ = doRequest(t, app, "PUT", updateURL, fiber.Map{"status": models.OrderStatusCancelled}, adminToken)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestCancelOrderRestocks(t *testing.T) {
	app := setupTestApp(t)
	buyerToken, _ := registerUser(t, app, "Buyer", "buyer7@example.com", "password1")
	adminToken := registerAdmin(t, app, "admin@example.com")
	product := createProduct(t, "Stove", "Outdoors", "55.00", 10)

	resp, body := placeOrder(t, app, buyerToken, []fiber.Map{{"product_id": product.ID, "quantity": 4}})
	require.Equal(t, 201, resp.StatusCode)
	orderID := uint(body["order_id"].(float64))

	var stored models.Product
	require.NoError(t, database.DB.First(&stored, product.ID).Error)
	require.Equal(t, 6, stored.Stock)

	resp, _ = doRequest(t, app, "PUT", fmt.Sprintf("/api/v1/order/admin/update/%d", orderID),
		fiber.Map{"status": models.OrderStatusCancelled}, adminToken)
	require.Equal(t, 200, resp.StatusCode)

	require.NoError(t, database.DB.First(&stored, product.ID).Error)
	assert.Equal(t, 10, stored.Stock)
}

func TestDeleteOrder(t *testing.T) {
	app := setupTestApp(t)
	buyerToken, _ := registerUser(t, app, "Buyer", "buyer8@example.com", "password1")
	adminToken := registerAdmin(t, app, "admin@example.com")
	product := createProduct(t, "Mug", "Home", "12.00", 10)

	resp, body := placeOrder(t, app, buyerToken, []fiber.Map{{"product_id": product.ID, "quantity": 1}})
	require.Equal(t, 201, resp.StatusCode)
	orderID := uint(body["order_id"].(float64))

	resp, _ = doRequest(t, app, "DELETE", fmt.Sprintf("/api/v1/order/admin/delete/%d", orderID), nil, adminToken)
	require.Equal(t, 200, resp.StatusCode)

	var items, shipping, payments int64
	database.DB.Model(&models.OrderItem{}).Where("order_id = ?", orderID).Count(&items)
	database.DB.Model(&models.ShippingInfo{}).Where("order_id = ?", orderID).Count(&shipping)
	database.DB.Model(&models.Payment{}).Where("order_id = ?", orderID).Count(&payments)
	assert.Zero(t, items)
	assert.Zero(t, shipping)
	assert.Zero(t, payments)

	resp, _ = doRequest(t, app, "DELETE", fmt.Sprintf("/api/v1/order/admin/delete/%d", orderID), nil, adminToken)
	assert.Equal(t, 404, resp.StatusCode)
}

const testWebhookSecret = "whsec_test_secret"

// stripeSignature forges a valid Stripe-Signature header for a payload,
// the same HMAC scheme the SDK verifies
func stripeSignature(payload []byte, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(t *testing.T, app *fiber.App, eventType, clientSecret string, sign bool) *http.Response {
	t.Helper()

	// The api_version deliberately differs from the SDK's pinned one:
	// accounts on other versions still deliver valid events
	payload := []byte(fmt.Sprintf(
		`{"id":"evt_test","api_version":"2024-06-20","type":%q,"data":{"object":{"id":"pi_test","client_secret":%q}}}`,
		eventType, clientSecret,
	))

	req := httptest.NewRequest("POST", "/api/v1/payment/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if sign {
		req.Header.Set("Stripe-Signature", stripeSignature(payload, time.Now()))
	} else {
		req.Header.Set("Stripe-Signature", "t=123,v1=deadbeef")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestStripeWebhookPaymentSucceeded(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	app := setupTestApp(t)
	token, _ := registerUser(t, app, "Buyer", "buyer9@example.com", "password1")
	product := createProduct(t, "Speaker", "Electronics", "60.00", 10)

	resp, body := placeOrder(t, app, token, []fiber.Map{{"product_id": product.ID, "quantity": 1}})
	require.Equal(t, 201, resp.StatusCode)
	orderID := uint(body["order_id"].(float64))
	clientSecret := body["paymentIntent"].(string)

	// A bad signature never touches the database
	resp = postWebhook(t, app, "payment_intent.succeeded", clientSecret, false)
	assert.Equal(t, 400, resp.StatusCode)

	resp = postWebhook(t, app, "payment_intent.succeeded", clientSecret, true)
	require.Equal(t, 200, resp.StatusCode)

	var order models.Order
	require.NoError(t, database.DB.Preload("Payment").First(&order, orderID).Error)
	require.NotNil(t, order.PaidAt)
	assert.Equal(t, models.PaymentStatusPaid, order.Payment.Status)
	paidAt := *order.PaidAt

	// Stock was charged at checkout, not on confirmation
	var stored models.Product
	require.NoError(t, database.DB.First(&stored, product.ID).Error)
	assert.Equal(t, 9, stored.Stock)

	// Replayed delivery is a no-op
	resp = postWebhook(t, app, "payment_intent.succeeded", clientSecret, true)
	require.Equal(t, 200, resp.StatusCode)
	require.NoError(t, database.DB.Preload("Payment").First(&order, orderID).Error)
	assert.Equal(t, models.PaymentStatusPaid, order.Payment.Status)
	assert.True(t, order.PaidAt.Equal(paidAt), "replay must not move paid_at")
	require.NoError(t, database.DB.First(&stored, product.ID).Error)
	assert.Equal(t, 9, stored.Stock)
}

func TestStripeWebhookPaymentFailed(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	app := setupTestApp(t)
	token, _ := registerUser(t, app, "Buyer", "buyer10@example.com", "password1")
	product := createProduct(t, "Tripod", "Electronics", "40.00", 10)

	resp, body := placeOrder(t, app, token, []fiber.Map{{"product_id": product.ID, "quantity": 1}})
	require.Equal(t, 201, resp.StatusCode)
	orderID := uint(body["order_id"].(float64))
	clientSecret := body["paymentIntent"].(string)

	resp = postWebhook(t, app, "payment_intent.payment_failed", clientSecret, true)
	require.Equal(t, 200, resp.StatusCode)

	var order models.Order
	require.NoError(t, database.DB.Preload("Payment").First(&order, orderID).Error)
	assert.Equal(t, models.PaymentStatusFailed, order.Payment.Status)
	assert.Nil(t, order.PaidAt)
}

func TestStripeWebhookSecretNotConfigured(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")

	app := setupTestApp(t)
	resp := postWebhook(t, app, "payment_intent.succeeded", "pi_x_secret_y", true)
	assert.Equal(t, 500, resp.StatusCode)
}
