package handlers

import (
	"errors"

	"shopora/models"

	"github.com/gofiber/fiber/v2"
)

// JSONErrorHandler funnels uncaught handler errors into the same uniform
// error body the handlers produce themselves.
func JSONErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	return c.Status(code).JSON(fiber.Map{"status": "error", "message": err.Error()})
}

// RegisterRoutes wires every /api/v1 endpoint onto the app
func RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "message": "API is healthy"})
	})
	api.Get("/settings", GetPublicSettings)

	// Auth
	auth := api.Group("/auth")
	auth.Post("/register", Register)
	auth.Post("/login", Login)
	auth.Get("/logout", Logout)
	auth.Get("/me", RequireAuth, Me)
	auth.Put("/profile/update", RequireAuth, UpdateProfile)
	auth.Put("/password/update", RequireAuth, UpdatePassword)
	auth.Post("/password/forgot", ForgotPassword)
	auth.Put("/password/reset/:token", ResetPassword)

	// Products & reviews
	product := api.Group("/product")
	product.Get("/", GetAllProducts)
	product.Get("/singleProduct/:id", GetSingleProduct)
	product.Post("/ai-search", AISearchProducts)
	product.Put("/post-new/review/:id", RequireAuth, PostReview)
	product.Delete("/delete/review/:id", RequireAuth, DeleteReview)
	product.Post("/admin/create", RequireAuth, RequireRoles(models.RoleAdmin), CreateProduct)
	product.Put("/admin/update/:id", RequireAuth, RequireRoles(models.RoleAdmin), UpdateProduct)
	product.Delete("/admin/delete/:id", RequireAuth, RequireRoles(models.RoleAdmin), DeleteProduct)

	// Orders
	order := api.Group("/order")
	order.Post("/new", RequireAuth, PlaceOrder)
	order.Get("/orders/me", RequireAuth, GetMyOrders)
	order.Get("/admin/getall", RequireAuth, RequireRoles(models.RoleAdmin), GetAllOrders)
	order.Put("/admin/update/:id", RequireAuth, RequireRoles(models.RoleAdmin), UpdateOrderStatus)
	order.Delete("/admin/delete/:id", RequireAuth, RequireRoles(models.RoleAdmin), DeleteOrder)
	order.Get("/:id", RequireAuth, GetSingleOrder)

	// Payment webhook (signature-verified, no session auth)
	payment := api.Group("/payment")
	payment.Post("/webhook", StripeWebhook)

	// Wishlist
	wishlist := api.Group("/wishlist", RequireAuth)
	wishlist.Get("/", GetWishlist)
	wishlist.Post("/", AddToWishlist)
	wishlist.Delete("/:productId", RemoveFromWishlist)
	wishlist.Get("/check/:productId", CheckWishlist)

	// Admin
	admin := api.Group("/admin", RequireAuth, RequireRoles(models.RoleAdmin))
	admin.Get("/getallusers", GetAllUsers)
	admin.Delete("/delete/:id", DeleteUser)
	admin.Get("/fetch/dashboard-stats", GetDashboardStats)
	admin.Get("/logs", GetSystemLogs)
	admin.Post("/upload", UploadFile)
	admin.Post("/settings", UpdateSettings)
	admin.Post("/settings/batch", UpdateSettingsBatch)
}
