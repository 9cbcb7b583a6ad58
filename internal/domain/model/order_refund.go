package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderRefund is a local refund record reconciling the order's bookkeeping
// with funds returned (or never captured) on the processor side.
type OrderRefund struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID           int64           `gorm:"not null;index" json:"order_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency          string          `gorm:"size:3;not null" json:"currency"`
	Reason            string          `json:"reason"`
	ProcessorRefundID string          `gorm:"size:100;index" json:"processor_refund_id"`
	CreatedAt         time.Time       `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (OrderRefund) TableName() string {
	return "order_refunds"
}

// OrderNote is an append-only audit entry on an order.
type OrderNote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   int64     `gorm:"not null;index" json:"order_id"`
	Note      string    `gorm:"not null" json:"note"`
	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (OrderNote) TableName() string {
	return "order_notes"
}
