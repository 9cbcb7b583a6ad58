package model

import (
	"database/sql/driver"
	"time"
)

// SubscriptionStatus represents the status of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
)

// Scan implements sql.Scanner interface
func (s *SubscriptionStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = SubscriptionStatus(v)
	case []byte:
		*s = SubscriptionStatus(v)
	default:
		*s = SubscriptionStatusInactive
	}
	return nil
}

// Value implements driver.Valuer interface
func (s SubscriptionStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Subscription is a recurring-payment entity. Its billing agreement id is
// created on the first payment and reused for every scheduled renewal; a
// renewal creates a fresh processor order but never a new agreement.
type Subscription struct {
	ID                 int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	ParentOrderID      int64              `gorm:"not null;index" json:"parent_order_id"`
	Status             SubscriptionStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	BillingAgreementID string             `gorm:"size:100;index" json:"billing_agreement_id,omitempty"`
	NextPaymentAt      *time.Time         `json:"next_payment_at,omitempty"`
	Metadata           JSONB              `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt          time.Time          `gorm:"default:now()" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}
