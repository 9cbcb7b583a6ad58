package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/checkoutlabs/paypal-gateway/internal/usecase"
)

// WebhookHandler terminates PayPal webhook deliveries. Each mode has its
// own verifier because signatures are checked against that mode's
// credentials.
type WebhookHandler struct {
	verifiers  map[string]*usecase.WebhookVerifier
	dispatcher *usecase.WebhookDispatcher
	logger     *zap.Logger
}

func NewWebhookHandler(verifiers map[string]*usecase.WebhookVerifier, dispatcher *usecase.WebhookDispatcher, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifiers:  verifiers,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleWebhook processes one delivery. Signature failures answer 400;
// everything the dispatcher decides is terminal answers 200 so the
// processor stops redelivering; internal faults answer 500 to request a
// redelivery.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	mode := c.Param("mode")
	verifier, ok := h.verifiers[mode]
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown mode"})
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading webhook body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "error reading request body"})
	}

	headers := transmissionHeaders(c.Request().Header)
	if !verifier.Verify(c.Request().Context(), mode, headers, body) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
	}

	if err := h.dispatcher.Dispatch(c.Request().Context(), mode, body); err != nil {
		h.logger.Error("Webhook dispatch failed",
			zap.String("mode", mode),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "event processing failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func transmissionHeaders(h http.Header) usecase.TransmissionHeaders {
	return usecase.TransmissionHeaders{
		AuthAlgo:         h.Get("Paypal-Auth-Algo"),
		CertURL:          h.Get("Paypal-Cert-Url"),
		TransmissionID:   h.Get("Paypal-Transmission-Id"),
		TransmissionSig:  h.Get("Paypal-Transmission-Sig"),
		TransmissionTime: h.Get("Paypal-Transmission-Time"),
	}
}
