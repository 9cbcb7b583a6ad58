package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/checkoutlabs/paypal-gateway/internal/domain/model"
)

// ErrOrderNotFound is returned when no order matches a lookup.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository is the gateway's view of the order store.
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Order, error)

	// FindByTransactionID resolves an order whose stored transaction id
	// metadata contains the given id as a substring. The stored value may
	// be composite or prefixed, so this is deliberately not an equality
	// match.
	FindByTransactionID(ctx context.Context, transactionID string) (*model.Order, error)

	// Save persists the order's status and metadata.
	Save(ctx context.Context, order *model.Order) error

	// TransitionStatus conditionally moves an order from one of the
	// expected statuses to the target status. It reports false without
	// error when the order was no longer in an expected status — the
	// caller lost a race and must not apply its side effects.
	TransitionStatus(ctx context.Context, orderID int64, expected []model.OrderStatus, to model.OrderStatus) (bool, error)

	AddNote(ctx context.Context, orderID int64, note string) error

	CreateRefund(ctx context.Context, refund *model.OrderRefund) error

	// RefundExists reports whether a refund with the given processor
	// refund id is already recorded against the order.
	RefundExists(ctx context.Context, orderID int64, processorRefundID string) (bool, error)

	// RefundedTotal sums the refunds recorded against an order.
	RefundedTotal(ctx context.Context, orderID int64) (decimal.Decimal, error)
}
