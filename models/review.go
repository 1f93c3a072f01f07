package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is one customer's rating of a product. One review per
// (user, product); posting again overwrites the previous one.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"index;uniqueIndex:idx_reviews_user_product;not null" json:"product_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_reviews_user_product;not null" json:"user_id"`
	Rating    float64   `gorm:"not null" json:"rating"` // 0..5
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}

// MigrateReviews migrates the table
func MigrateReviews(db *gorm.DB) error {
	return db.AutoMigrate(&Review{})
}
