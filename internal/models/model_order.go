package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusFulfilled OrderStatus = "fulfilled"
)

// Order is the durable outcome of a successful payment. The unique index on
// order_number is what makes order creation idempotent under duplicate
// gateway notifications.
type Order struct {
	ID          string          `gorm:"column:id;primary_key;type:uuid" json:"id"`
	OrderNumber string          `gorm:"column:order_number;type:varchar(64);not null;uniqueIndex" json:"order_number"`
	BasketID    string          `gorm:"column:basket_id;type:uuid;not null;index" json:"basket_id"`
	Total       decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	Currency    string          `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Status      OrderStatus     `gorm:"column:status;type:varchar(16);not null" json:"status"`
	PlacedAt    time.Time       `gorm:"column:placed_at;not null" json:"placed_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Order) TableName() string { return "order" }
