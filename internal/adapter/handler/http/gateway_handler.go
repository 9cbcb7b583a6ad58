package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/checkoutlabs/paypal-gateway/internal/domain/repository"
	"github.com/checkoutlabs/paypal-gateway/internal/usecase"
)

// GatewayHandler exposes the merchant-facing operations: connectivity
// status, webhook lifecycle, refunds, and subscription management.
type GatewayHandler struct {
	client        usecase.ProcessorClient
	payments      *usecase.PaymentService
	subscriptions *usecase.SubscriptionService
	lifecycle     *usecase.WebhookLifecycle
	publicURL     string
	logger        *zap.Logger
}

func NewGatewayHandler(
	client usecase.ProcessorClient,
	payments *usecase.PaymentService,
	subscriptions *usecase.SubscriptionService,
	lifecycle *usecase.WebhookLifecycle,
	publicURL string,
	logger *zap.Logger,
) *GatewayHandler {
	return &GatewayHandler{
		client:        client,
		payments:      payments,
		subscriptions: subscriptions,
		lifecycle:     lifecycle,
		publicURL:     publicURL,
		logger:        logger,
	}
}

// Status checks the configured credentials against the identity endpoint.
func (h *GatewayHandler) Status(c echo.Context) error {
	info, err := h.client.UserInfo(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"status": "disconnected", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "connected",
		"user_id": info.UserID,
		"email":   info.Email,
	})
}

// RegisterWebhook subscribes this gateway's listener URL for a mode.
func (h *GatewayHandler) RegisterWebhook(c echo.Context) error {
	mode := c.Param("mode")
	listenerURL := strings.TrimRight(h.publicURL, "/") + "/webhook/" + mode

	id, err := h.lifecycle.Register(c.Request().Context(), mode, listenerURL)
	if err != nil {
		h.logger.Error("Failed to register webhook",
			zap.String("mode", mode),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"webhook_id": id, "url": listenerURL})
}

// UnregisterWebhook removes the stored webhook subscription for a mode.
func (h *GatewayHandler) UnregisterWebhook(c echo.Context) error {
	mode := c.Param("mode")
	if err := h.lifecycle.Unregister(c.Request().Context(), mode); err != nil {
		h.logger.Error("Failed to unregister webhook",
			zap.String("mode", mode),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

type refundRequest struct {
	Amount string `json:"amount"`
	Reason string `json:"reason"`
}

// Refund executes a merchant-initiated refund for an order.
func (h *GatewayHandler) Refund(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	var req refundRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid refund amount"})
	}

	order, err := h.payments.Refund(c.Request().Context(), orderID, amount, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		case errors.Is(err, usecase.ErrNoTransactionID):
			return c.JSON(http.StatusConflict, echo.Map{"error": "order has no transaction to refund"})
		default:
			h.logger.Error("Refund failed",
				zap.Int64("order_id", orderID),
				zap.Error(err))
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order_id": order.ID,
		"status":   order.Status,
		"metadata": order.Metadata,
	})
}

type agreementRequest struct {
	TokenID string `json:"token_id"`
}

// FinalizeAgreement exchanges an approved agreement token for a billing
// agreement on an order.
func (h *GatewayHandler) FinalizeAgreement(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req agreementRequest
	if err := c.Bind(&req); err != nil || req.TokenID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing token_id"})
	}

	agreementID, err := h.subscriptions.FinalizeAgreement(c.Request().Context(), orderID, req.TokenID)
	if err != nil {
		h.logger.Error("Failed to finalize agreement",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"agreement_id": agreementID})
}

type renewalRequest struct {
	OrderID int64 `json:"order_id"`
}

// Renew charges a scheduled subscription renewal.
func (h *GatewayHandler) Renew(c echo.Context) error {
	subscriptionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid subscription id"})
	}
	var req renewalRequest
	if err := c.Bind(&req); err != nil || req.OrderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing order_id"})
	}

	if err := h.subscriptions.ProcessRenewal(c.Request().Context(), subscriptionID, req.OrderID); err != nil {
		if errors.Is(err, usecase.ErrNoBillingAgreement) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "subscription has no billing agreement"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "charged"})
}

// ChangePaymentMethod swaps a subscription's billing agreement.
func (h *GatewayHandler) ChangePaymentMethod(c echo.Context) error {
	subscriptionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid subscription id"})
	}
	var req agreementRequest
	if err := c.Bind(&req); err != nil || req.TokenID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing token_id"})
	}

	agreementID, err := h.subscriptions.ChangePaymentMethod(c.Request().Context(), subscriptionID, req.TokenID)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"agreement_id": agreementID})
}
