package repository

import (
	"context"

	"github.com/checkoutlabs/paypal-gateway/internal/domain/model"
)

// SubscriptionRepository stores recurring-payment entities.
type SubscriptionRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Subscription, error)

	// GetForOrder returns the subscriptions created from a parent order.
	GetForOrder(ctx context.Context, orderID int64) ([]*model.Subscription, error)

	// SetBillingAgreementID persists the agreement id used for renewals.
	SetBillingAgreementID(ctx context.Context, subscriptionID int64, agreementID string) error
}
