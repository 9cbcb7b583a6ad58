package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/checkoutlabs/paypal-gateway/internal/domain/model"
	wire "github.com/checkoutlabs/paypal-gateway/internal/domain/paypal"
	"github.com/checkoutlabs/paypal-gateway/internal/domain/repository"
)

const captureLinkSegment = "payments/captures/"

// ErrUnresolvableEvent is returned when no local order can be tied to an
// inbound event. Such events are acknowledged and logged, never retried.
var ErrUnresolvableEvent = errors.New("no order matches the event's transaction id")

// TransactionResolver maps an inbound processor event back to the local
// order it concerns.
type TransactionResolver struct {
	orders repository.OrderRepository
	logger *zap.Logger
}

func NewTransactionResolver(orders repository.OrderRepository, logger *zap.Logger) *TransactionResolver {
	return &TransactionResolver{orders: orders, logger: logger}
}

// Resolve finds the local order an event refers to. The stored transaction
// id is matched as a substring, and only orders paid through this gateway
// qualify.
func (r *TransactionResolver) Resolve(ctx context.Context, event *wire.Event) (*model.Order, error) {
	transactionID := TransactionIDFromEvent(event)
	if transactionID == "" {
		return nil, fmt.Errorf("%w: event %s carries no transaction id", ErrUnresolvableEvent, event.ID)
	}

	order, err := r.orders.FindByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: transaction %s", ErrUnresolvableEvent, transactionID)
		}
		return nil, fmt.Errorf("failed to look up transaction %s: %w", transactionID, err)
	}

	if order.PaymentMethod != model.GatewayID {
		return nil, fmt.Errorf("%w: order %d was not paid through this gateway", ErrUnresolvableEvent, order.ID)
	}
	return order, nil
}

// TransactionIDFromEvent extracts the transaction id an event refers to.
//
// A capture that settles an earlier authorization names that authorization
// in supplementary_data; the local order stored the authorization id, so it
// wins over the capture's own id. Void events carry the authorization id as
// the resource id. Everything else is found by scanning the resource links
// back to front for the capture URL segment, so refund events resolve
// through their "up" link to the capture they reverse.
func TransactionIDFromEvent(event *wire.Event) string {
	if event.EventType == wire.EventCaptureCompleted {
		if id := event.AuthorizationUpgradeID(); id != "" {
			return id
		}
	}
	if event.EventType == wire.EventAuthorizationVoided {
		return event.Resource.ID
	}

	for i := len(event.Resource.Links) - 1; i >= 0; i-- {
		href := event.Resource.Links[i].Href
		idx := strings.Index(href, captureLinkSegment)
		if idx == -1 {
			continue
		}
		id := href[idx+len(captureLinkSegment):]
		if slash := strings.IndexByte(id, '/'); slash != -1 {
			id = id[:slash]
		}
		if id != "" {
			return id
		}
	}

	return event.Resource.ID
}
