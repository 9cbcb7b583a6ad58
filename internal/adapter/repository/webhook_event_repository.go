package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/checkoutlabs/paypal-gateway/internal/domain/model"
	domainRepo "github.com/checkoutlabs/paypal-gateway/internal/domain/repository"
)

type webhookEventRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookEventRepository creates a gorm-backed webhook event log.
func NewWebhookEventRepository(db *gorm.DB, logger *zap.Logger) domainRepo.WebhookEventRepository {
	return &webhookEventRepository{
		db:     db,
		logger: logger,
	}
}

func (r *webhookEventRepository) SaveEvent(ctx context.Context, eventID, eventType, mode string, data json.RawMessage) (bool, error) {
	var eventData model.JSONB
	if err := json.Unmarshal(data, &eventData); err != nil {
		r.logger.Warn("Failed to parse event data",
			zap.String("event_id", eventID),
			zap.Error(err))
		eventData = model.JSONB{}
	}

	event := &model.WebhookEvent{
		EventID:   eventID,
		EventType: eventType,
		Mode:      mode,
		Data:      eventData,
	}

	// ON CONFLICT DO NOTHING: at-least-once delivery means the same event
	// id can arrive again; zero rows inserted flags the duplicate.
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)
	if result.Error != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to save webhook event: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *webhookEventRepository) MarkProcessed(ctx context.Context, eventID string) error {
	now := time.Now()

	err := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Update("processed_at", &now).Error
	if err != nil {
		return fmt.Errorf("failed to mark webhook event processed: %w", err)
	}

	return nil
}
