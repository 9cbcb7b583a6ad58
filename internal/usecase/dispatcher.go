package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/checkoutlabs/paypal-gateway/internal/domain/model"
	wire "github.com/checkoutlabs/paypal-gateway/internal/domain/paypal"
	"github.com/checkoutlabs/paypal-gateway/internal/domain/repository"
)

// EventHandler applies one event type to its resolved order.
type EventHandler func(ctx context.Context, order *model.Order, event *wire.Event) error

// WebhookDispatcher routes verified events to their handlers. Registration
// happens at construction; there is no global registry.
type WebhookDispatcher struct {
	resolver *TransactionResolver
	events   repository.WebhookEventRepository
	handlers map[string]EventHandler
	logger   *zap.Logger
}

func NewWebhookDispatcher(
	resolver *TransactionResolver,
	events repository.WebhookEventRepository,
	payments *PaymentService,
	logger *zap.Logger,
) *WebhookDispatcher {
	d := &WebhookDispatcher{
		resolver: resolver,
		events:   events,
		logger:   logger,
	}
	d.handlers = map[string]EventHandler{
		wire.EventCaptureCompleted:    d.captureCompleted(payments),
		wire.EventCaptureRefunded:     payments.ApplyRefundEvent,
		wire.EventCaptureDenied:       payments.ApplyDeniedEvent,
		wire.EventAuthorizationVoided: payments.ApplyVoidEvent,
	}
	return d
}

// Handle registers or replaces the handler for an event type.
func (d *WebhookDispatcher) Handle(eventType string, handler EventHandler) {
	d.handlers[eventType] = handler
}

// Dispatch processes one verified delivery. Every outcome except an
// internal failure acknowledges the delivery: duplicates, unknown event
// types, and unresolvable events are all terminal for the delivery and
// must not be retried by the processor.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, mode string, body json.RawMessage) error {
	var event wire.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("malformed event payload: %w", err)
	}
	if event.ID == "" {
		return errors.New("event carries no id")
	}

	fresh, err := d.events.SaveEvent(ctx, event.ID, event.EventType, mode, body)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	if !fresh {
		d.logger.Info("duplicate event delivery ignored",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.EventType))
		return nil
	}

	handler, ok := d.handlers[event.EventType]
	if !ok {
		// Not an error: the processor may deliver types outside the
		// subscription, and new types must not break the endpoint.
		d.logger.Debug("no handler for event type",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.EventType))
		return d.events.MarkProcessed(ctx, event.ID)
	}

	order, err := d.resolver.Resolve(ctx, &event)
	if err != nil {
		if errors.Is(err, ErrUnresolvableEvent) {
			d.logger.Error("event does not match any order",
				zap.String("event_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.Error(err))
			return d.events.MarkProcessed(ctx, event.ID)
		}
		return err
	}

	d.logger.Info("dispatching event",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.EventType),
		zap.Int64("order_id", order.ID))

	if err := handler(ctx, order, &event); err != nil {
		return fmt.Errorf("handler for %s failed: %w", event.EventType, err)
	}
	return d.events.MarkProcessed(ctx, event.ID)
}

// captureCompleted distinguishes a capture that settles an authorization
// hold from a plain sale capture.
func (d *WebhookDispatcher) captureCompleted(payments *PaymentService) EventHandler {
	return func(ctx context.Context, order *model.Order, event *wire.Event) error {
		if event.AuthorizationUpgradeID() != "" && order.HasStatus(model.OrderStatusOnHold) {
			return payments.UpgradeAuthorization(ctx, order, event)
		}
		payments.RecordCaptureBreakdown(order, event.Resource.SellerReceivableBreakdown)
		return payments.PaymentCompleted(ctx, order, event.Resource.ID)
	}
}
