package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/checkoutlabs/paypal-gateway/internal/config"
	"github.com/checkoutlabs/paypal-gateway/internal/domain/model"
	wire "github.com/checkoutlabs/paypal-gateway/internal/domain/paypal"
	"github.com/checkoutlabs/paypal-gateway/internal/domain/repository"
)

var (
	// ErrOrderNotPayable is returned when checkout is attempted on an
	// order that is not awaiting payment through this gateway.
	ErrOrderNotPayable = errors.New("order is not awaiting payment through this gateway")

	// ErrMissingPayer is returned when the payer returned from approval
	// without a payer id, meaning approval did not complete.
	ErrMissingPayer = errors.New("payer approval incomplete")
)

// CheckoutResult is what the checkout endpoints hand back to the shop
// frontend.
type CheckoutResult struct {
	// ProcessorOrderID identifies the processor-side order for the smart
	// button flow.
	ProcessorOrderID string `json:"processor_order_id,omitempty"`
	// RedirectURL is the payer approval URL for the standard flow, or
	// the post-payment landing page after finalization.
	RedirectURL string `json:"redirect_url,omitempty"`
}

// CheckoutService drives the payer-facing half of a payment: creating the
// processor order, and settling it when the payer returns approved.
type CheckoutService struct {
	orders   repository.OrderRepository
	payments *PaymentService
	client   ProcessorClient
	service  config.ServiceConfig
	intent   string
	logger   *zap.Logger
}

func NewCheckoutService(
	orders repository.OrderRepository,
	payments *PaymentService,
	client ProcessorClient,
	service config.ServiceConfig,
	intent string,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		orders:   orders,
		payments: payments,
		client:   client,
		service:  service,
		intent:   intent,
		logger:   logger,
	}
}

// ReturnURL is where PayPal redirects the payer after approval.
func (s *CheckoutService) ReturnURL() string {
	return strings.TrimRight(s.service.PublicURL, "/") + "/api/v1/checkout/return"
}

// ProcessPayment starts the standard redirect flow: the processor order is
// created and the payer is sent to the approval URL.
func (s *CheckoutService) ProcessPayment(ctx context.Context, orderID int64) (*CheckoutResult, error) {
	order, err := s.payableOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	processorOrder, err := s.createProcessorOrder(ctx, order, true)
	if err != nil {
		return nil, err
	}

	approvalURL := processorOrder.ApprovalURL()
	if approvalURL == "" {
		return nil, fmt.Errorf("processor order %s has no approval link", processorOrder.ID)
	}

	s.logger.Info("checkout started",
		zap.Int64("order_id", order.ID),
		zap.String("processor_order_id", processorOrder.ID),
		zap.String("intent", s.intent))
	return &CheckoutResult{
		ProcessorOrderID: processorOrder.ID,
		RedirectURL:      approvalURL,
	}, nil
}

// CreateProcessorOrder backs the smart button flow: the client-side
// buttons create the order here and approve it in the browser, so no
// redirect URLs are attached.
func (s *CheckoutService) CreateProcessorOrder(ctx context.Context, orderID int64) (*CheckoutResult, error) {
	order, err := s.payableOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	processorOrder, err := s.createProcessorOrder(ctx, order, false)
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{ProcessorOrderID: processorOrder.ID}, nil
}

// FinalizeReturn settles an approved processor order when the payer comes
// back: capture or authorize per the configured intent, then apply the
// outcome to the local order. The token is the processor order id PayPal
// appends to the return URL.
func (s *CheckoutService) FinalizeReturn(ctx context.Context, token, payerID string) (*CheckoutResult, error) {
	if token == "" {
		return nil, errors.New("missing order token")
	}
	if payerID == "" {
		return nil, ErrMissingPayer
	}

	var (
		processorOrder *wire.Order
		err            error
	)
	if s.intent == "authorize" {
		processorOrder, err = s.client.AuthorizeOrder(ctx, token, nil)
	} else {
		processorOrder, err = s.client.CaptureOrder(ctx, token, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to settle order %s: %w", token, err)
	}

	order, err := s.localOrder(ctx, processorOrder)
	if err != nil {
		return nil, err
	}

	s.payments.RecordDebugID(order, processorOrder.DebugID)

	// Only a COMPLETED processor order is settled money. Anything else,
	// such as a capture pending review, must not mark the order paid.
	if processorOrder.Status != wire.StatusCompleted {
		return nil, s.failCheckout(ctx, order,
			fmt.Errorf("processor order %s ended in status %s", processorOrder.ID, processorOrder.Status))
	}

	if s.intent == "authorize" {
		authorizationID := processorOrder.AuthorizationID()
		if authorizationID == "" {
			return nil, s.failCheckout(ctx, order,
				fmt.Errorf("processor order %s has no authorization", processorOrder.ID))
		}
		if err := s.payments.MarkAuthorized(ctx, order, authorizationID); err != nil {
			return nil, err
		}
	} else {
		captureID := processorOrder.CaptureID()
		if captureID == "" {
			return nil, s.failCheckout(ctx, order,
				fmt.Errorf("processor order %s has no capture", processorOrder.ID))
		}
		s.payments.RecordCaptureBreakdown(order, processorOrder.CaptureBreakdown())
		if err := s.payments.PaymentCompleted(ctx, order, captureID); err != nil {
			return nil, err
		}
	}

	return &CheckoutResult{
		ProcessorOrderID: processorOrder.ID,
		RedirectURL:      s.service.SuccessURL,
	}, nil
}

// CreateAgreementToken starts agreement-backed billing: the returned token
// is approved by the payer and later exchanged for a billing agreement.
func (s *CheckoutService) CreateAgreementToken(ctx context.Context) (*wire.AgreementToken, error) {
	token, err := s.client.CreateAgreementToken(ctx, &wire.AgreementTokenRequest{
		Description: "Billing agreement for recurring payments",
		Payer:       &wire.AgreementPayer{PaymentMethod: "paypal"},
		Plan: &wire.AgreementTokenPlan{
			Type: "MERCHANT_INITIATED_BILLING",
			MerchantPreferences: &wire.MerchantPreferences{
				ReturnURL:           s.service.SuccessURL,
				CancelURL:           s.service.CheckoutURL,
				SkipShippingAddress: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agreement token: %w", err)
	}
	return token, nil
}

// failCheckout marks the order failed when settlement did not go through
// and hands the cause back for the frontend redirect.
func (s *CheckoutService) failCheckout(ctx context.Context, order *model.Order, cause error) error {
	s.logger.Error("checkout settlement failed",
		zap.Int64("order_id", order.ID),
		zap.Error(cause))
	if err := s.payments.MarkFailed(ctx, order,
		fmt.Sprintf("PayPal payment failed: %v", cause)); err != nil {
		s.logger.Warn("failed to fail order after settlement failure",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
	return cause
}

func (s *CheckoutService) payableOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != model.GatewayID {
		return nil, ErrOrderNotPayable
	}
	if !order.HasStatus(model.OrderStatusPending, model.OrderStatusFailed) {
		return nil, ErrOrderNotPayable
	}
	return order, nil
}

func (s *CheckoutService) createProcessorOrder(ctx context.Context, order *model.Order, withRedirects bool) (*wire.Order, error) {
	req := &wire.OrderRequest{
		Intent: strings.ToUpper(s.intent),
		PurchaseUnits: []wire.PurchaseUnit{
			{
				ReferenceID: strconv.FormatInt(order.ID, 10),
				Amount: &wire.Money{
					Value:        order.Total.StringFixed(2),
					CurrencyCode: order.Currency,
				},
			},
		},
	}
	if withRedirects {
		req.ApplicationContext = &wire.ApplicationContext{
			ReturnURL: s.ReturnURL(),
			CancelURL: s.service.CheckoutURL,
		}
	}

	processorOrder, err := s.client.CreateOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create processor order for order %d: %w", order.ID, err)
	}
	return processorOrder, nil
}

// localOrder maps a processor order back to the local order through the
// round-tripped reference id.
func (s *CheckoutService) localOrder(ctx context.Context, processorOrder *wire.Order) (*model.Order, error) {
	referenceID := processorOrder.ReferenceID()
	if referenceID == "" {
		return nil, fmt.Errorf("processor order %s carries no reference id", processorOrder.ID)
	}
	orderID, err := strconv.ParseInt(referenceID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("processor order %s has malformed reference id %q", processorOrder.ID, referenceID)
	}
	return s.orders.GetByID(ctx, orderID)
}
