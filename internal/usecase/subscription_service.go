package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/checkoutlabs/paypal-gateway/internal/domain/model"
	wire "github.com/checkoutlabs/paypal-gateway/internal/domain/paypal"
	"github.com/checkoutlabs/paypal-gateway/internal/domain/repository"
)

// ErrNoBillingAgreement is returned when a renewal is scheduled for a
// subscription without a stored agreement.
var ErrNoBillingAgreement = errors.New("subscription has no billing agreement")

// SubscriptionService handles agreement-backed recurring payments: the
// agreement is minted once when the payer approves, then charged without
// payer interaction on every renewal.
type SubscriptionService struct {
	subscriptions repository.SubscriptionRepository
	orders        repository.OrderRepository
	payments      *PaymentService
	client        ProcessorClient
	logger        *zap.Logger
}

func NewSubscriptionService(
	subscriptions repository.SubscriptionRepository,
	orders repository.OrderRepository,
	payments *PaymentService,
	client ProcessorClient,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: subscriptions,
		orders:        orders,
		payments:      payments,
		client:        client,
		logger:        logger,
	}
}

// FinalizeAgreement exchanges an approved agreement token for a billing
// agreement and stores its id on the parent order and every subscription
// created from it.
func (s *SubscriptionService) FinalizeAgreement(ctx context.Context, orderID int64, tokenID string) (string, error) {
	agreement, err := s.client.CreateBillingAgreement(ctx, tokenID)
	if err != nil {
		return "", fmt.Errorf("failed to create billing agreement: %w", err)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	order.SetMeta(model.MetaAgreementID, agreement.ID)
	if err := s.orders.Save(ctx, order); err != nil {
		return "", err
	}

	subscriptions, err := s.subscriptions.GetForOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	for _, sub := range subscriptions {
		if err := s.subscriptions.SetBillingAgreementID(ctx, sub.ID, agreement.ID); err != nil {
			return "", err
		}
	}

	s.logger.Info("billing agreement established",
		zap.Int64("order_id", orderID),
		zap.String("agreement_id", agreement.ID))
	return agreement.ID, nil
}

// ProcessRenewal charges a scheduled renewal against the subscription's
// stored agreement. On a declined charge the renewal order is failed, not
// retried; the scheduler owns retry policy.
func (s *SubscriptionService) ProcessRenewal(ctx context.Context, subscriptionID, renewalOrderID int64) error {
	subscription, err := s.subscriptions.GetByID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if subscription.BillingAgreementID == "" {
		return ErrNoBillingAgreement
	}

	order, err := s.orders.GetByID(ctx, renewalOrderID)
	if err != nil {
		return err
	}
	if order.IsPaid() {
		return nil
	}

	processorOrder, err := s.client.CreateOrder(ctx, &wire.OrderRequest{
		Intent: wire.IntentCapture,
		PurchaseUnits: []wire.PurchaseUnit{
			{
				ReferenceID: strconv.FormatInt(order.ID, 10),
				Amount: &wire.Money{
					Value:        order.Total.StringFixed(2),
					CurrencyCode: order.Currency,
				},
			},
		},
		PaymentSource: &wire.PaymentSource{
			Token: &wire.PaymentSourceToken{
				ID:   subscription.BillingAgreementID,
				Type: wire.TokenTypeBillingAgreement,
			},
		},
	})
	if err != nil {
		return s.failRenewal(ctx, order, subscriptionID, err)
	}

	// With a stored payment source the order settles in the create call;
	// anything but COMPLETED is a declined charge.
	if processorOrder.Status != wire.StatusCompleted {
		return s.failRenewal(ctx, order, subscriptionID,
			fmt.Errorf("renewal order %s ended in status %s", processorOrder.ID, processorOrder.Status))
	}

	captureID := processorOrder.CaptureID()
	if captureID == "" {
		return s.failRenewal(ctx, order, subscriptionID,
			fmt.Errorf("renewal order %s completed without a capture", processorOrder.ID))
	}

	order.SetMeta(model.MetaAgreementID, subscription.BillingAgreementID)
	s.payments.RecordDebugID(order, processorOrder.DebugID)
	s.payments.RecordCaptureBreakdown(order, processorOrder.CaptureBreakdown())
	if err := s.payments.PaymentCompleted(ctx, order, captureID); err != nil {
		return err
	}

	s.logger.Info("subscription renewal charged",
		zap.Int64("subscription_id", subscriptionID),
		zap.Int64("order_id", order.ID),
		zap.String("transaction_id", captureID))
	return nil
}

// ChangePaymentMethod swaps the subscription's agreement for one created
// from a freshly approved token.
func (s *SubscriptionService) ChangePaymentMethod(ctx context.Context, subscriptionID int64, tokenID string) (string, error) {
	agreement, err := s.client.CreateBillingAgreement(ctx, tokenID)
	if err != nil {
		return "", fmt.Errorf("failed to create billing agreement: %w", err)
	}
	if err := s.subscriptions.SetBillingAgreementID(ctx, subscriptionID, agreement.ID); err != nil {
		return "", err
	}

	s.logger.Info("subscription payment method changed",
		zap.Int64("subscription_id", subscriptionID),
		zap.String("agreement_id", agreement.ID))
	return agreement.ID, nil
}

func (s *SubscriptionService) failRenewal(ctx context.Context, order *model.Order, subscriptionID int64, cause error) error {
	s.logger.Error("subscription renewal failed",
		zap.Int64("subscription_id", subscriptionID),
		zap.Int64("order_id", order.ID),
		zap.Error(cause))

	if _, err := s.orders.TransitionStatus(ctx, order.ID,
		[]model.OrderStatus{model.OrderStatusPending, model.OrderStatusOnHold},
		model.OrderStatusFailed); err != nil {
		return err
	}
	if err := s.orders.AddNote(ctx, order.ID,
		fmt.Sprintf("Subscription renewal payment failed: %v", cause)); err != nil {
		s.logger.Warn("failed to add renewal failure note",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
	return fmt.Errorf("renewal of subscription %d failed: %w", subscriptionID, cause)
}
