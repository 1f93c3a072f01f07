package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable catalog entry. Ratings is derived from reviews and
// recomputed inside the same transaction as every review write.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"index" json:"category"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Ratings     float64         `gorm:"default:0" json:"ratings"`
	Images      []string        `gorm:"serializer:json" json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Reviews []Review `gorm:"foreignKey:ProductID" json:"reviews,omitempty"`
}

// MigrateProducts migrates the table
func MigrateProducts(db *gorm.DB) error {
	return db.AutoMigrate(&Product{})
}
