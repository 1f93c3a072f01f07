package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// User represents a registered customer or admin
type User struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Name                string         `gorm:"not null" json:"name"`
	Email               string         `gorm:"uniqueIndex;not null" json:"email"`
	Password            string         `json:"-"` // Stored as bcrypt hash, ignored in JSON
	Role                string         `json:"role" gorm:"default:User"`
	Avatar              string         `json:"avatar" gorm:"type:text"`
	ResetPasswordToken  string         `json:"-"` // sha256 hex of the raw token
	ResetPasswordExpire *time.Time     `json:"-"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

// MigrateUsers migrates the table
func MigrateUsers(db *gorm.DB) error {
	return db.AutoMigrate(&User{})
}
