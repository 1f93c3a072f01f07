package models

import "gorm.io/gorm"

// Wishlist represents a product saved by a user
type Wishlist struct {
	gorm.Model
	UserID    uint `gorm:"index;uniqueIndex:idx_wishlist_user_product;not null" json:"user_id"`
	ProductID uint `gorm:"uniqueIndex:idx_wishlist_user_product;not null" json:"product_id"`

	// Relationship
	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product"`
}

// MigrateWishlists migrates the table
func MigrateWishlists(db *gorm.DB) error {
	return db.AutoMigrate(&Wishlist{})
}
