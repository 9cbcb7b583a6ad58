package model

import (
	"time"
)

// WebhookEvent is the permanent record of a received processor event.
// The unique processor event id makes redelivered events no-ops no matter
// how late they arrive, unlike the short-lived refund markers.
type WebhookEvent struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID     string     `gorm:"unique;not null;size:100;index" json:"event_id"`
	EventType   string     `gorm:"not null;size:100;index" json:"event_type"`
	Mode        string     `gorm:"size:10;not null" json:"mode"`
	Data        JSONB      `gorm:"type:jsonb;not null" json:"data"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (WebhookEvent) TableName() string {
	return "webhook_events"
}

// Setting is a key-value row for gateway state that outlives a process,
// such as the webhook id registered with the processor per mode.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Setting) TableName() string {
	return "gateway_settings"
}
