package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

const (
	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
	PaymentStatusFailed  = "Failed"
)

// Order is created atomically with its items, shipping info and payment
// stub. PaidAt stays nil until the payment provider confirms via webhook.
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	BuyerID       uint            `gorm:"index;not null" json:"buyer_id"`
	ItemsPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"items_price"`
	TaxPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax_price"`
	ShippingPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"shipping_price"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	OrderStatus   string          `gorm:"default:Processing" json:"order_status"`
	PaidAt        *time.Time      `json:"paid_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Buyer        User          `gorm:"foreignKey:BuyerID" json:"-"`
	Items        []OrderItem   `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	ShippingInfo *ShippingInfo `gorm:"foreignKey:OrderID" json:"shipping_info,omitempty"`
	Payment      *Payment      `gorm:"foreignKey:OrderID" json:"payment,omitempty"`
}

// OrderItem snapshots price, title and image at order time so later
// product edits don't alter historical orders.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index;not null" json:"order_id"`
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"` // > 0
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Title     string          `gorm:"not null" json:"title"`
	Image     string          `gorm:"type:text" json:"image"`
	CreatedAt time.Time       `json:"created_at"`
}

// ShippingInfo is 1:1 with an order
type ShippingInfo struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	OrderID  uint   `gorm:"uniqueIndex;not null" json:"order_id"`
	FullName string `gorm:"not null" json:"full_name"`
	Address  string `gorm:"not null" json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `gorm:"not null" json:"country"`
	Pincode  string `json:"pincode"`
	Phone    string `gorm:"not null" json:"phone"`
}

// Payment is 1:1 with an order. PaymentIntentID holds the provider's
// client secret, which is what the webhook events carry back.
type Payment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OrderID         uint      `gorm:"uniqueIndex;not null" json:"order_id"`
	PaymentIntentID string    `gorm:"index;not null" json:"payment_intent_id"`
	Status          string    `gorm:"default:Pending" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MigrateOrders migrates the order tables
func MigrateOrders(db *gorm.DB) error {
	return db.AutoMigrate(&Order{}, &OrderItem{}, &ShippingInfo{}, &Payment{})
}
