package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shopora/database"
	"shopora/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestApp builds a Fiber app wired to a fresh in-memory SQLite
// database named after the test, so tests can't see each other's data.
func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps the shared-cache memory db alive for the
	// whole test
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.MigrateAll(db))
	database.DB = db

	app := fiber.New(fiber.Config{ErrorHandler: JSONErrorHandler})
	RegisterRoutes(app)
	return app
}

// doRequest sends a JSON request and decodes the JSON response body
func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]interface{}
	if len(raw) > 0 {
		// Webhook error responses are plain text, leave parsed nil then
		_ = json.Unmarshal(raw, &parsed)
	}
	return resp, parsed
}

// registerUser creates an account through the API and returns its bearer
// token and id
func registerUser(t *testing.T, app *fiber.App, name, email, password string) (string, uint) {
	t.Helper()

	resp, body := doRequest(t, app, "POST", "/api/v1/auth/register", fiber.Map{
		"name":     name,
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, 201, resp.StatusCode)

	token, ok := body["token"].(string)
	require.True(t, ok, "register response should carry a token")
	user := body["user"].(map[string]interface{})
	return token, uint(user["id"].(float64))
}

// registerAdmin registers a user then promotes it directly in the
// database. The middleware reads the role from the db, so the original
// token keeps working.
func registerAdmin(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	token, id := registerUser(t, app, "Admin "+email, email, "adminpass1")
	err := database.DB.Model(&models.User{}).Where("id = ?", id).Update("role", models.RoleAdmin).Error
	require.NoError(t, err)
	return token
}

// createProduct inserts a product straight into the database
func createProduct(t *testing.T, name, category, price string, stock int) models.Product {
	t.Helper()

	product := models.Product{
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Images:   []string{"/uploads/seed/" + strings.ToLower(name) + ".jpg"},
	}
	require.NoError(t, database.DB.Create(&product).Error)
	return product
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// requireDecimal asserts a JSON decimal field (marshalled as a quoted
// string) equals the expected value regardless of trailing zeros
func requireDecimal(t *testing.T, expected string, got interface{}) {
	t.Helper()

	s, ok := got.(string)
	require.True(t, ok, "expected decimal string, got %T (%v)", got, got)
	require.True(t, decimal.RequireFromString(expected).Equal(decimal.RequireFromString(s)),
		"expected %s, got %s", expected, s)
}
