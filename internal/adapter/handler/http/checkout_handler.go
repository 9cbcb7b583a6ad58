package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/checkoutlabs/paypal-gateway/internal/domain/repository"
	"github.com/checkoutlabs/paypal-gateway/internal/middleware/auth"
	"github.com/checkoutlabs/paypal-gateway/internal/usecase"
)

// CheckoutHandler exposes the payer-facing checkout endpoints. Mutating
// endpoints require a nonce minted for the checkout purpose.
type CheckoutHandler struct {
	checkout    *usecase.CheckoutService
	nonces      *auth.NonceManager
	checkoutURL string
	logger      *zap.Logger
}

func NewCheckoutHandler(checkout *usecase.CheckoutService, nonces *auth.NonceManager, checkoutURL string, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout:    checkout,
		nonces:      nonces,
		checkoutURL: checkoutURL,
		logger:      logger,
	}
}

type checkoutRequest struct {
	Nonce   string `json:"nonce"`
	OrderID int64  `json:"order_id"`
}

// CreateNonce mints a nonce for the checkout form.
func (h *CheckoutHandler) CreateNonce(c echo.Context) error {
	nonce, err := h.nonces.Issue(auth.PurposeCheckoutCart)
	if err != nil {
		h.logger.Error("Failed to issue nonce", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue nonce"})
	}
	return c.JSON(http.StatusOK, echo.Map{"nonce": nonce})
}

// ProcessPayment starts the standard redirect checkout for an order.
func (h *CheckoutHandler) ProcessPayment(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.nonces.Validate(req.Nonce, auth.PurposeCheckoutCart); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid nonce"})
	}

	result, err := h.checkout.ProcessPayment(c.Request().Context(), req.OrderID)
	if err != nil {
		return h.checkoutError(c, req.OrderID, err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateOrder backs the smart button flow: the browser asks for a
// processor order id and completes approval client-side.
func (h *CheckoutHandler) CreateOrder(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.nonces.Validate(req.Nonce, auth.PurposeCheckoutCart); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid nonce"})
	}

	result, err := h.checkout.CreateProcessorOrder(c.Request().Context(), req.OrderID)
	if err != nil {
		return h.checkoutError(c, req.OrderID, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": result.ProcessorOrderID})
}

// HandleReturn settles the payment when PayPal redirects the payer back.
// Failures send the payer back to checkout instead of rendering an error.
func (h *CheckoutHandler) HandleReturn(c echo.Context) error {
	token := c.QueryParam("token")
	payerID := c.QueryParam("PayerID")

	result, err := h.checkout.FinalizeReturn(c.Request().Context(), token, payerID)
	if err != nil {
		if !errors.Is(err, usecase.ErrMissingPayer) {
			h.logger.Error("Failed to finalize checkout return",
				zap.String("token", token),
				zap.Error(err))
		}
		return c.Redirect(http.StatusFound, h.checkoutURL)
	}
	return c.Redirect(http.StatusFound, result.RedirectURL)
}

// CreateAgreementToken starts agreement-backed billing for subscriptions.
func (h *CheckoutHandler) CreateAgreementToken(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.nonces.Validate(req.Nonce, auth.PurposeCheckoutCart); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid nonce"})
	}

	token, err := h.checkout.CreateAgreementToken(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to create agreement token", zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"token_id": token.TokenID})
}

func (h *CheckoutHandler) checkoutError(c echo.Context, orderID int64, err error) error {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	case errors.Is(err, usecase.ErrOrderNotPayable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "order is not awaiting payment"})
	default:
		h.logger.Error("Checkout failed",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
}
