package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	LogLevelInfo    = "INFO"
	LogLevelError   = "ERROR"
	LogLevelSuccess = "SUCCESS"
)

// SystemLog is an audit row surfaced on the dashboard activity feed
// (orders placed, payments confirmed, admin actions).
type SystemLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func MigrateLogs(db *gorm.DB) error {
	return db.AutoMigrate(&SystemLog{})
}

// Audit writes are fire-and-forget: a failed insert never fails the
// operation being logged.
func logAt(db *gorm.DB, level, message string) {
	db.Create(&SystemLog{
		Level:   level,
		Message: message,
	})
}

func LogInfo(db *gorm.DB, message string) {
	logAt(db, LogLevelInfo, message)
}

func LogError(db *gorm.DB, message string) {
	logAt(db, LogLevelError, message)
}

func LogSuccess(db *gorm.DB, message string) {
	logAt(db, LogLevelSuccess, message)
}
