package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BasketStatus string

const (
	BasketStatusOpen      BasketStatus = "open"
	BasketStatusFrozen    BasketStatus = "frozen"
	BasketStatusSubmitted BasketStatus = "submitted"
)

// Basket is the shopping basket a checkout attempt is made against. Once a
// checkout freezes it, nothing in this service mutates it again except the
// transition to submitted when its order is placed.
type Basket struct {
	ID          string       `gorm:"column:id;primary_key;type:uuid" json:"id"`
	OrderNumber string       `gorm:"column:order_number;type:varchar(64);not null;uniqueIndex" json:"order_number"`
	Currency    string       `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Status      BasketStatus `gorm:"column:status;type:varchar(16);not null;default:'open'" json:"status"`
	Lines       []BasketLine `gorm:"foreignKey:BasketID" json:"lines"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Basket) TableName() string { return "basket" }

type BasketLine struct {
	ID        string          `gorm:"column:id;primary_key;type:uuid" json:"id"`
	BasketID  string          `gorm:"column:basket_id;type:uuid;not null;index" json:"basket_id"`
	Title     string          `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Quantity  int64           `gorm:"column:quantity;type:bigint;not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null" json:"line_total"`
	CreatedAt time.Time       `json:"created_at"`
}

func (BasketLine) TableName() string { return "basket_line" }

func (b *Basket) IsFrozen() bool {
	return b != nil && b.Status != BasketStatusOpen
}

func (b *Basket) NumLines() int {
	if b == nil {
		return 0
	}
	return len(b.Lines)
}

// Total is the basket total across all lines, tax inclusive.
func (b *Basket) Total() decimal.Decimal {
	total := decimal.Zero
	if b == nil {
		return total
	}
	for _, line := range b.Lines {
		total = total.Add(line.LineTotal)
	}
	return total
}
