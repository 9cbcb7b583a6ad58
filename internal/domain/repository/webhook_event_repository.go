package repository

import (
	"context"
	"encoding/json"
)

// WebhookEventRepository is the permanent dedupe log of processor events.
type WebhookEventRepository interface {
	// SaveEvent records an inbound event. It reports false when the event
	// id was already recorded, in which case the delivery is a duplicate
	// and must not be processed again.
	SaveEvent(ctx context.Context, eventID, eventType, mode string, data json.RawMessage) (bool, error)

	MarkProcessed(ctx context.Context, eventID string) error
}

// SettingRepository is a key-value store for gateway state, such as the
// processor webhook id registered per mode.
type SettingRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// RefundMarkerStore suppresses duplicate refund application inside a short
// window, covering the admin-action-then-webhook double delivery. It is
// not a correctness guarantee for arbitrarily delayed redelivery; the
// WebhookEventRepository log is.
type RefundMarkerStore interface {
	// SeenOrMark reports whether the (order, refund id) pair was already
	// marked, marking it when it was not.
	SeenOrMark(ctx context.Context, orderID int64, refundID string) (bool, error)
}
