package models

import "gorm.io/gorm"

// Setting represents a key-value configuration pair (tax rate, shipping
// fee, store name). Checkout math falls back to built-in defaults when a
// key is absent.
type Setting struct {
	Key   string `gorm:"primaryKey" json:"key"`
	Value string `json:"value"`
}

// MigrateSettings migrates the table
func MigrateSettings(db *gorm.DB) error {
	return db.AutoMigrate(&Setting{})
}

// GetSetting returns the stored value or the given default
func GetSetting(db *gorm.DB, key, fallback string) string {
	var setting Setting
	if err := db.Where("key = ?", key).First(&setting).Error; err != nil {
		return fallback
	}
	return setting.Value
}
