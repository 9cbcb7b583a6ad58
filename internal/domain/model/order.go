package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// GatewayID is the payment method identifier orders must carry for the
// gateway to touch them.
const GatewayID = "paypal"

// Order metadata keys. Metadata is the single source of truth for
// processor-side identifiers and bookkeeping; there is no separate ledger.
const (
	MetaTransactionID = "_paypal_transaction_id"
	MetaDebugID       = "_paypal_debug_id"
	MetaFee           = "_paypal_fee"
	MetaNet           = "_paypal_net"
	MetaAgreementID   = "_paypal_agreement_id"
	MetaRefundID      = "_paypal_refund_id"
)

// OrderStatus represents the financial state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusOnHold     OrderStatus = "on-hold"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusFailed     OrderStatus = "failed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// Scan implements sql.Scanner interface
func (s *OrderStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = OrderStatus(v)
	case []byte:
		*s = OrderStatus(v)
	default:
		*s = OrderStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (s OrderStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Order is the single shared mutable resource both the checkout flow and
// the webhook flow write. The gateway only transitions status and appends
// metadata and notes; it never creates or deletes orders.
type Order struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	PaymentMethod string          `gorm:"size:50;not null;index" json:"payment_method"`
	Status        OrderStatus     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Metadata      JSONB           `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// Meta returns the string value of a metadata key, or "" when absent.
func (o *Order) Meta(key string) string {
	if o.Metadata == nil {
		return ""
	}
	v, ok := o.Metadata[key].(string)
	if !ok {
		return ""
	}
	return v
}

// SetMeta stores a metadata value, allocating the bag on first write.
func (o *Order) SetMeta(key, value string) {
	if o.Metadata == nil {
		o.Metadata = make(JSONB)
	}
	o.Metadata[key] = value
}

// HasStatus reports whether the order is in any of the given statuses.
func (o *Order) HasStatus(statuses ...OrderStatus) bool {
	for _, s := range statuses {
		if o.Status == s {
			return true
		}
	}
	return false
}

// IsPaid reports a completed-equivalent status: payment completion on a
// paid order must be a no-op.
func (o *Order) IsPaid() bool {
	return o.HasStatus(OrderStatusProcessing, OrderStatusCompleted, OrderStatusRefunded)
}

// JSONB represents a JSONB database type
type JSONB map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONB) Scan(src interface{}) error {
	if src == nil {
		*j = nil
		return nil
	}

	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		*j = make(JSONB)
		return nil
	}
}
