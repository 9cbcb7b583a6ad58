package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/checkoutlabs/paypal-gateway/internal/domain/model"
	domainRepo "github.com/checkoutlabs/paypal-gateway/internal/domain/repository"
)

type subscriptionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSubscriptionRepository creates a gorm-backed subscription repository.
func NewSubscriptionRepository(db *gorm.DB, logger *zap.Logger) domainRepo.SubscriptionRepository {
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id int64) (*model.Subscription, error) {
	var sub model.Subscription

	err := r.db.WithContext(ctx).First(&sub, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return &sub, nil
}

func (r *subscriptionRepository) GetForOrder(ctx context.Context, orderID int64) ([]*model.Subscription, error) {
	var subs []*model.Subscription

	err := r.db.WithContext(ctx).
		Where("parent_order_id = ?", orderID).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriptions for order: %w", err)
	}

	return subs, nil
}

func (r *subscriptionRepository) SetBillingAgreementID(ctx context.Context, subscriptionID int64, agreementID string) error {
	err := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", subscriptionID).
		Updates(map[string]interface{}{
			"billing_agreement_id": agreementID,
			"updated_at":           time.Now(),
		}).Error
	if err != nil {
		r.logger.Error("Failed to set billing agreement id",
			zap.Int64("subscription_id", subscriptionID),
			zap.Error(err))
		return fmt.Errorf("failed to set billing agreement id: %w", err)
	}

	return nil
}
