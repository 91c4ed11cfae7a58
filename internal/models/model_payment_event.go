package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentEvent records a payment accepted against a basket, written from the
// verified gateway notification before the order is placed.
type PaymentEvent struct {
	ID            string          `gorm:"column:id;primary_key;type:uuid" json:"id"`
	BasketID      string          `gorm:"column:basket_id;type:uuid;not null;index" json:"basket_id"`
	OrderNumber   string          `gorm:"column:order_number;type:varchar(64);not null" json:"order_number"`
	TransactionID string          `gorm:"column:transaction_id;type:varchar(128);not null;index" json:"transaction_id"`
	ProcessorName string          `gorm:"column:processor_name;type:varchar(64);not null" json:"processor_name"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Currency      string          `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	CardType      string          `gorm:"column:card_type;type:varchar(32)" json:"card_type"`
	Last4Digits   string          `gorm:"column:last4_digits;type:varchar(4)" json:"last4_digits"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (PaymentEvent) TableName() string { return "payment_event" }
