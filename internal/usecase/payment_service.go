package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/checkoutlabs/paypal-gateway/internal/domain/model"
	wire "github.com/checkoutlabs/paypal-gateway/internal/domain/paypal"
	"github.com/checkoutlabs/paypal-gateway/internal/domain/repository"
)

// ErrNoTransactionID is returned when a refund is requested for an order
// that never recorded a processor transaction.
var ErrNoTransactionID = errors.New("order has no transaction id")

// PaymentService owns every status transition and every piece of payment
// bookkeeping on an order. Both the checkout path and the webhook path go
// through it, so the idempotency rules live in exactly one place.
type PaymentService struct {
	orders  repository.OrderRepository
	markers repository.RefundMarkerStore
	client  ProcessorClient
	logger  *zap.Logger
}

func NewPaymentService(
	orders repository.OrderRepository,
	markers repository.RefundMarkerStore,
	client ProcessorClient,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		orders:  orders,
		markers: markers,
		client:  client,
		logger:  logger,
	}
}

// PaymentCompleted moves an order into the paid state. Calling it on an
// already-paid order is a no-op, whichever path got there first; the
// conditional transition closes the race between the return redirect and
// the webhook.
func (s *PaymentService) PaymentCompleted(ctx context.Context, order *model.Order, transactionID string) error {
	if order.IsPaid() {
		s.logger.Debug("payment completion on paid order ignored",
			zap.Int64("order_id", order.ID),
			zap.String("status", string(order.Status)))
		return nil
	}

	moved, err := s.orders.TransitionStatus(ctx, order.ID,
		[]model.OrderStatus{model.OrderStatusPending, model.OrderStatusOnHold, model.OrderStatusFailed},
		model.OrderStatusProcessing)
	if err != nil {
		return err
	}
	if !moved {
		s.logger.Info("lost payment completion race, skipping side effects",
			zap.Int64("order_id", order.ID))
		return nil
	}
	order.Status = model.OrderStatusProcessing

	if transactionID != "" {
		order.SetMeta(model.MetaTransactionID, transactionID)
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return err
	}

	note := "Payment completed."
	if transactionID != "" {
		note = fmt.Sprintf("Payment completed. Transaction ID: %s", transactionID)
	}
	if err := s.orders.AddNote(ctx, order.ID, note); err != nil {
		s.logger.Warn("failed to add payment note",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}

	s.logger.Info("payment completed",
		zap.Int64("order_id", order.ID),
		zap.String("transaction_id", transactionID))
	return nil
}

// MarkAuthorized records an authorization hold: the authorization id
// becomes the order's transaction id and the order waits on-hold for a
// later capture.
func (s *PaymentService) MarkAuthorized(ctx context.Context, order *model.Order, authorizationID string) error {
	moved, err := s.orders.TransitionStatus(ctx, order.ID,
		[]model.OrderStatus{model.OrderStatusPending, model.OrderStatusFailed},
		model.OrderStatusOnHold)
	if err != nil {
		return err
	}
	if !moved {
		return nil
	}
	order.Status = model.OrderStatusOnHold

	order.SetMeta(model.MetaTransactionID, authorizationID)
	if err := s.orders.Save(ctx, order); err != nil {
		return err
	}

	if err := s.orders.AddNote(ctx, order.ID,
		fmt.Sprintf("Payment authorized. Authorization ID: %s", authorizationID)); err != nil {
		s.logger.Warn("failed to add authorization note",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
	return nil
}

// MarkFailed fails an order whose payment did not settle, keeping the
// reason in the order notes. Orders already past settlement are left
// alone.
func (s *PaymentService) MarkFailed(ctx context.Context, order *model.Order, note string) error {
	moved, err := s.orders.TransitionStatus(ctx, order.ID,
		[]model.OrderStatus{model.OrderStatusPending, model.OrderStatusOnHold},
		model.OrderStatusFailed)
	if err != nil {
		return err
	}
	if !moved {
		return nil
	}
	order.Status = model.OrderStatusFailed

	if err := s.orders.Save(ctx, order); err != nil {
		return err
	}
	if err := s.orders.AddNote(ctx, order.ID, note); err != nil {
		s.logger.Warn("failed to add failure note",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
	return nil
}

// RecordCaptureBreakdown stores the processor fee and the net payout from
// a capture's receivable breakdown. When the processor omits the
// breakdown, existing values are left untouched. The order is not saved
// here; the caller persists alongside its own writes.
func (s *PaymentService) RecordCaptureBreakdown(order *model.Order, breakdown *wire.SellerReceivableBreakdown) {
	if breakdown == nil {
		return
	}

	var fee decimal.Decimal
	if breakdown.PaypalFee != nil {
		parsed, err := decimal.NewFromString(breakdown.PaypalFee.Value)
		if err != nil {
			s.logger.Warn("unparseable fee in capture breakdown",
				zap.Int64("order_id", order.ID),
				zap.String("value", breakdown.PaypalFee.Value))
			return
		}
		fee = parsed
		order.SetMeta(model.MetaFee, fee.StringFixed(2))
	}

	if breakdown.NetAmount != nil {
		if net, err := decimal.NewFromString(breakdown.NetAmount.Value); err == nil {
			order.SetMeta(model.MetaNet, net.StringFixed(2))
			return
		}
	}
	order.SetMeta(model.MetaNet, order.Total.Sub(fee).StringFixed(2))
}

// RecordDebugID keeps the processor's correlation id on the order for
// support lookups.
func (s *PaymentService) RecordDebugID(order *model.Order, debugID string) {
	if debugID != "" {
		order.SetMeta(model.MetaDebugID, debugID)
	}
}

// Refund executes a merchant-initiated refund against the processor and
// applies the bookkeeping. The refund is marked before the webhook echo of
// it can arrive, so the echo is suppressed.
func (s *PaymentService) Refund(ctx context.Context, orderID int64, amount decimal.Decimal, reason string) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	captureID := order.Meta(model.MetaTransactionID)
	if captureID == "" {
		return nil, ErrNoTransactionID
	}

	refund, err := s.client.RefundCapture(ctx, captureID, &wire.RefundRequest{
		Amount: &wire.Money{
			Value:        amount.StringFixed(2),
			CurrencyCode: order.Currency,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("refund of order %d failed: %w", orderID, err)
	}

	if _, err := s.markers.SeenOrMark(ctx, order.ID, refund.ID); err != nil {
		s.logger.Warn("failed to mark refund, webhook echo may double-log",
			zap.Int64("order_id", order.ID),
			zap.String("refund_id", refund.ID),
			zap.Error(err))
	}

	s.RecordDebugID(order, refund.DebugID)
	if err := s.applyRefund(ctx, order, refund.ID, amount, reason); err != nil {
		return nil, err
	}
	return order, nil
}

// ApplyRefundEvent applies a processor-reported refund. Deliveries for
// refunds already applied locally are skipped via the marker store.
func (s *PaymentService) ApplyRefundEvent(ctx context.Context, order *model.Order, event *wire.Event) error {
	refundID := event.Resource.ID
	if refundID == "" {
		return fmt.Errorf("refund event %s carries no refund id", event.ID)
	}

	seen, err := s.markers.SeenOrMark(ctx, order.ID, refundID)
	if err != nil {
		return fmt.Errorf("failed to check refund marker: %w", err)
	}
	if seen {
		s.logger.Info("refund already applied, skipping duplicate delivery",
			zap.Int64("order_id", order.ID),
			zap.String("refund_id", refundID))
		return nil
	}

	// The marker expires; the refund record does not. An echo arriving
	// after the marker window must still not book the refund twice.
	recorded, err := s.orders.RefundExists(ctx, order.ID, refundID)
	if err != nil {
		return fmt.Errorf("failed to check recorded refunds: %w", err)
	}
	if recorded {
		s.logger.Info("refund already recorded, skipping late delivery",
			zap.Int64("order_id", order.ID),
			zap.String("refund_id", refundID))
		return nil
	}

	amount := decimal.Zero
	if event.Resource.Amount != nil {
		parsed, err := decimal.NewFromString(event.Resource.Amount.Value)
		if err != nil {
			return fmt.Errorf("unparseable refund amount %q: %w", event.Resource.Amount.Value, err)
		}
		amount = parsed
	}

	return s.applyRefund(ctx, order, refundID, amount, "Refunded via PayPal")
}

// applyRefund is the single bookkeeping path for refunds from either
// direction: refund record, net adjustment, audit note, and the terminal
// status once the order is fully refunded.
func (s *PaymentService) applyRefund(ctx context.Context, order *model.Order, refundID string, amount decimal.Decimal, reason string) error {
	if err := s.orders.CreateRefund(ctx, &model.OrderRefund{
		OrderID:           order.ID,
		Amount:            amount,
		Currency:          order.Currency,
		Reason:            reason,
		ProcessorRefundID: refundID,
	}); err != nil {
		return err
	}

	s.adjustNet(order, amount)
	order.SetMeta(model.MetaRefundID, refundID)
	if err := s.orders.Save(ctx, order); err != nil {
		return err
	}

	if err := s.orders.AddNote(ctx, order.ID,
		fmt.Sprintf("Refunded %s %s. Refund ID: %s", amount.StringFixed(2), order.Currency, refundID)); err != nil {
		s.logger.Warn("failed to add refund note",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}

	refunded, err := s.orders.RefundedTotal(ctx, order.ID)
	if err != nil {
		s.logger.Warn("failed to sum refunds",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
		return nil
	}
	if refunded.GreaterThanOrEqual(order.Total) {
		moved, err := s.orders.TransitionStatus(ctx, order.ID,
			[]model.OrderStatus{model.OrderStatusProcessing, model.OrderStatusCompleted, model.OrderStatusOnHold},
			model.OrderStatusRefunded)
		if err != nil {
			return err
		}
		if moved {
			order.Status = model.OrderStatusRefunded
		}
	}

	s.logger.Info("refund applied",
		zap.Int64("order_id", order.ID),
		zap.String("refund_id", refundID),
		zap.String("amount", amount.StringFixed(2)))
	return nil
}

// adjustNet decrements the stored net payout by the refund amount. Each
// refund works from the previously stored net, so partial refunds
// accumulate instead of each being subtracted from the original capture.
func (s *PaymentService) adjustNet(order *model.Order, refundAmount decimal.Decimal) {
	prev, err := decimal.NewFromString(order.Meta(model.MetaNet))
	if err != nil {
		fee, feeErr := decimal.NewFromString(order.Meta(model.MetaFee))
		if feeErr != nil {
			// No capture bookkeeping was ever recorded; nothing to adjust.
			return
		}
		prev = order.Total.Sub(fee)
	}
	order.SetMeta(model.MetaNet, prev.Sub(refundAmount).StringFixed(2))
}

// UpgradeAuthorization settles an authorized order when its capture
// completes: the capture id replaces the stored authorization id, the
// capture's fee and net are recorded, and a capture short of the order
// total books the difference as a refund.
func (s *PaymentService) UpgradeAuthorization(ctx context.Context, order *model.Order, event *wire.Event) error {
	captureID := event.Resource.ID
	previousID := order.Meta(model.MetaTransactionID)

	order.SetMeta(model.MetaTransactionID, captureID)
	s.RecordCaptureBreakdown(order, event.Resource.SellerReceivableBreakdown)
	if err := s.orders.Save(ctx, order); err != nil {
		return err
	}

	if err := s.orders.AddNote(ctx, order.ID,
		fmt.Sprintf("Authorization %s captured as transaction %s.", previousID, captureID)); err != nil {
		s.logger.Warn("failed to add capture note",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}

	if err := s.PaymentCompleted(ctx, order, captureID); err != nil {
		return err
	}

	if event.Resource.Amount == nil {
		return nil
	}
	captured, err := decimal.NewFromString(event.Resource.Amount.Value)
	if err != nil {
		return fmt.Errorf("unparseable capture amount %q: %w", event.Resource.Amount.Value, err)
	}
	if captured.GreaterThanOrEqual(order.Total) {
		return nil
	}

	// Partial capture: the uncaptured remainder was released back to the
	// payer, so it is booked as a refund without a processor call.
	shortfall := order.Total.Sub(captured)
	if err := s.orders.CreateRefund(ctx, &model.OrderRefund{
		OrderID:           order.ID,
		Amount:            shortfall,
		Currency:          order.Currency,
		Reason:            "Uncaptured remainder of authorization",
		ProcessorRefundID: "",
	}); err != nil {
		return err
	}
	if err := s.orders.AddNote(ctx, order.ID,
		fmt.Sprintf("Captured %s of %s %s; remainder released.",
			captured.StringFixed(2), order.Total.StringFixed(2), order.Currency)); err != nil {
		s.logger.Warn("failed to add partial capture note",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
	return nil
}

// ApplyVoidEvent cancels an order whose authorization was voided at the
// processor.
func (s *PaymentService) ApplyVoidEvent(ctx context.Context, order *model.Order, event *wire.Event) error {
	moved, err := s.orders.TransitionStatus(ctx, order.ID,
		[]model.OrderStatus{model.OrderStatusPending, model.OrderStatusOnHold},
		model.OrderStatusCancelled)
	if err != nil {
		return err
	}
	if !moved {
		s.logger.Info("void event for order no longer awaiting capture",
			zap.Int64("order_id", order.ID),
			zap.String("event_id", event.ID))
		return nil
	}
	order.Status = model.OrderStatusCancelled

	if err := s.orders.AddNote(ctx, order.ID, "Payment authorization voided at PayPal."); err != nil {
		s.logger.Warn("failed to add void note",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
	return nil
}

// ApplyDeniedEvent fails an order whose capture was denied.
func (s *PaymentService) ApplyDeniedEvent(ctx context.Context, order *model.Order, event *wire.Event) error {
	moved, err := s.orders.TransitionStatus(ctx, order.ID,
		[]model.OrderStatus{model.OrderStatusPending, model.OrderStatusOnHold, model.OrderStatusProcessing},
		model.OrderStatusFailed)
	if err != nil {
		return err
	}
	if !moved {
		return nil
	}
	order.Status = model.OrderStatusFailed

	if err := s.orders.AddNote(ctx, order.ID, "Payment capture denied by PayPal."); err != nil {
		s.logger.Warn("failed to add denial note",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
	return nil
}
