package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProcessorResponse is one raw gateway interaction, recorded verbatim.
// Rows are append-only: there is no update or delete path anywhere in the
// codebase. The table doubles as the lookup index from a gateway transaction
// id back to the basket that produced it, and as the store of the
// SecurityKey issued at registration time.
type ProcessorResponse struct {
	ID            string         `gorm:"column:id;primary_key;type:uuid" json:"id"`
	BasketID      string         `gorm:"column:basket_id;type:uuid;not null;index" json:"basket_id"`
	TransactionID string         `gorm:"column:transaction_id;type:varchar(128);index" json:"transaction_id"`
	ProcessorName string         `gorm:"column:processor_name;type:varchar(64);not null" json:"processor_name"`
	Response      datatypes.JSON `gorm:"column:response;type:jsonb" json:"response"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (ProcessorResponse) TableName() string { return "processor_response" }
