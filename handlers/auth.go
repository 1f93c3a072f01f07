package handlers

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"shopora/database"
	"shopora/metrics"
	"shopora/models"
	"shopora/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

func validPasswordLength(password string) bool {
	return len(password) >= 8 && len(password) <= 16
}

// sendToken issues a JWT, sets it as an httpOnly cookie and returns it in
// the body as a bearer-token fallback.
func sendToken(c *fiber.Ctx, user models.User, status int, message string) error {
	token, err := utils.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to generate token"})
	}

	days, err := strconv.Atoi(os.Getenv("COOKIE_EXPIRES_DAYS"))
	if err != nil || days <= 0 {
		days = 7
	}

	// Cross-site cookies (separate frontend deployments) need
	// SameSite=None + Secure, which only works over https.
	isProduction := os.Getenv("APP_ENV") == "production"
	sameSite := "Lax"
	if isProduction {
		sameSite = "None"
	}

	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(days) * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   isProduction,
		SameSite: sameSite,
	})

	return c.Status(status).JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"token":   token,
		"user":    user,
	})
}

// Register creates a new account. Role is always User; admins are promoted
// out of band.
func Register(c *fiber.Ctx) error {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid input"})
	}

	if input.Name == "" || input.Email == "" || input.Password == "" {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Please provide all required fields."})
	}
	if !validPasswordLength(input.Password) {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Password must be between 8 and 16 characters."})
	}

	var existing models.User
	if err := database.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "User already registered with this email."})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to hash password"})
	}

	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashedPassword),
		Role:     models.RoleUser,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to create user"})
	}

	metrics.UsersRegistered.Inc()
	return sendToken(c, user, 201, "User registered successfully")
}

// Login verifies credentials and issues a session token. The optional
// portal field lets each frontend enforce its role gate server-side:
// "store" only accepts User accounts, "dashboard" only Admin.
func Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Portal   string `json:"portal"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid input"})
	}

	if input.Email == "" || input.Password == "" {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Please provide email and password."})
	}

	var user models.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		return c.Status(401).JSON(fiber.Map{"status": "error", "message": "Invalid email or password."})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return c.Status(401).JSON(fiber.Map{"status": "error", "message": "Invalid email or password."})
	}

	switch input.Portal {
	case "store":
		if user.Role != models.RoleUser {
			return c.Status(403).JSON(fiber.Map{"status": "error", "message": "Admin accounts must use the dashboard."})
		}
	case "dashboard":
		if user.Role != models.RoleAdmin {
			return c.Status(403).JSON(fiber.Map{"status": "error", "message": "This area is restricted to admins."})
		}
	}

	return sendToken(c, user, 200, "Logged in successfully")
}

// Logout clears the session cookie
func Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"status": "success", "message": "Logged out successfully"})
}

// Me returns the authenticated user
func Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "success", "user": currentUser(c)})
}

// UpdateProfile allows users to update their own name and avatar
func UpdateProfile(c *fiber.Ctx) error {
	var input struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid input"})
	}

	user := currentUser(c)
	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Avatar != "" {
		user.Avatar = input.Avatar
	}

	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"status": "success", "message": "Profile updated", "user": user})
}

// UpdatePassword handles password changes for logged-in users
func UpdatePassword(c *fiber.Ctx) error {
	var input struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid input"})
	}

	if !validPasswordLength(input.NewPassword) {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Password must be between 8 and 16 characters."})
	}

	user := currentUser(c)
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.OldPassword)); err != nil {
		return c.Status(401).JSON(fiber.Map{"status": "error", "message": "Incorrect old password"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to hash password"})
	}

	user.Password = string(hashedPassword)
	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to update password"})
	}

	return c.JSON(fiber.Map{"status": "success", "message": "Password updated successfully"})
}

// ForgotPassword emails a reset link. Only the sha256 of the token is
// stored; the raw token lives in the link.
func ForgotPassword(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
	}

	if err := c.BodyParser(&input); err != nil || input.Email == "" {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Please provide your email."})
	}

	var user models.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"status": "error", "message": "User not found with this email."})
	}

	token, hashed, expiresAt, err := utils.GenerateResetToken()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to generate reset token"})
	}

	user.ResetPasswordToken = hashed
	user.ResetPasswordExpire = &expiresAt
	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to store reset token"})
	}

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:5173"
	}
	resetURL := fmt.Sprintf("%s/password/reset/%s", frontendURL, token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>You requested a password reset. The link below is valid for 2 hours:</p><p><a href=%q>%s</a></p><p>If you didn't request this, ignore this email.</p>",
		user.Name, resetURL, resetURL,
	)

	if err := utils.SendEmail([]string{user.Email}, "Shopora Password Reset", body); err != nil {
		// Roll the token back so a half-sent request can't be replayed
		user.ResetPasswordToken = ""
		user.ResetPasswordExpire = nil
		database.DB.Save(&user)
		log.Println("Reset email error:", err)
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to send reset email"})
	}

	return c.JSON(fiber.Map{"status": "success", "message": "Reset link sent to " + user.Email})
}

// ResetPassword consumes a reset link token and sets a new password
func ResetPassword(c *fiber.Ctx) error {
	var input struct {
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid input"})
	}

	if input.Password != input.ConfirmPassword {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Passwords do not match."})
	}
	if !validPasswordLength(input.Password) {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Password must be between 8 and 16 characters."})
	}

	hashed := utils.HashToken(c.Params("token"))

	var user models.User
	err := database.DB.
		Where("reset_password_token = ? AND reset_password_expire > ?", hashed, time.Now()).
		First(&user).Error
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Reset link is invalid or has expired."})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to hash password"})
	}

	user.Password = string(hashedPassword)
	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = nil
	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to reset password"})
	}

	return sendToken(c, user, 200, "Password reset successfully")
}
