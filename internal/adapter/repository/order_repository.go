package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/checkoutlabs/paypal-gateway/internal/domain/model"
	domainRepo "github.com/checkoutlabs/paypal-gateway/internal/domain/repository"
)

type orderRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewOrderRepository creates a gorm-backed order repository.
func NewOrderRepository(db *gorm.DB, logger *zap.Logger) domainRepo.OrderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order

	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainRepo.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

func (r *orderRepository) FindByTransactionID(ctx context.Context, transactionID string) (*model.Order, error) {
	var order model.Order

	// Substring match: the stored transaction id may be composite or
	// prefixed, mirroring how checkout and webhook paths write it.
	err := r.db.WithContext(ctx).
		Where("payment_method = ?", model.GatewayID).
		Where("metadata->>? LIKE ?", model.MetaTransactionID, "%"+transactionID+"%").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainRepo.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by transaction id: %w", err)
	}

	return &order, nil
}

func (r *orderRepository) Save(ctx context.Context, order *model.Order) error {
	order.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"status":     order.Status,
			"metadata":   order.Metadata,
			"updated_at": order.UpdatedAt,
		}).Error
	if err != nil {
		r.logger.Error("Failed to save order",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
		return fmt.Errorf("failed to save order: %w", err)
	}

	return nil
}

func (r *orderRepository) TransitionStatus(ctx context.Context, orderID int64, expected []model.OrderStatus, to model.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status IN ?", orderID, expected).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to transition order status: %w", result.Error)
	}

	// Zero rows means another writer moved the order first.
	return result.RowsAffected > 0, nil
}

func (r *orderRepository) AddNote(ctx context.Context, orderID int64, note string) error {
	entry := &model.OrderNote{
		ID:      uuid.New(),
		OrderID: orderID,
		Note:    note,
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		r.logger.Error("Failed to add order note",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		return fmt.Errorf("failed to add order note: %w", err)
	}

	return nil
}

func (r *orderRepository) CreateRefund(ctx context.Context, refund *model.OrderRefund) error {
	if refund.ID == uuid.Nil {
		refund.ID = uuid.New()
	}

	if err := r.db.WithContext(ctx).Create(refund).Error; err != nil {
		r.logger.Error("Failed to create refund record",
			zap.Int64("order_id", refund.OrderID),
			zap.String("processor_refund_id", refund.ProcessorRefundID),
			zap.Error(err))
		return fmt.Errorf("failed to create refund record: %w", err)
	}

	return nil
}

func (r *orderRepository) RefundExists(ctx context.Context, orderID int64, processorRefundID string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.OrderRefund{}).
		Where("order_id = ? AND processor_refund_id = ?", orderID, processorRefundID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check refund record: %w", err)
	}

	return count > 0, nil
}

func (r *orderRepository) RefundedTotal(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	var total decimal.NullDecimal

	err := r.db.WithContext(ctx).
		Model(&model.OrderRefund{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum refunds: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}

	return total.Decimal, nil
}
