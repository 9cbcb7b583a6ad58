package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/checkoutlabs/paypal-gateway/internal/config"
	"github.com/checkoutlabs/paypal-gateway/internal/domain/model"
	wire "github.com/checkoutlabs/paypal-gateway/internal/domain/paypal"
	"github.com/checkoutlabs/paypal-gateway/internal/infrastructure/dedupe"
	"github.com/checkoutlabs/paypal-gateway/internal/middleware/auth"
	"github.com/checkoutlabs/paypal-gateway/internal/usecase"
)

const testCheckoutURL = "https://shop.example.com/checkout"

func newCheckoutTestHarness(client *fakeClient, orders *fakeOrders) (*CheckoutHandler, *auth.NonceManager) {
	logger := zap.NewNop()
	service := config.ServiceConfig{
		PublicURL:   "https://pay.example.com",
		CheckoutURL: testCheckoutURL,
		SuccessURL:  "https://shop.example.com/order-received",
	}
	payments := usecase.NewPaymentService(orders, dedupe.NewMemoryMarkerStore(), client, logger)
	checkout := usecase.NewCheckoutService(orders, payments, client, service, "capture", logger)
	nonces := auth.NewNonceManager("test-secret", time.Hour)
	return NewCheckoutHandler(checkout, nonces, testCheckoutURL, logger), nonces
}

func postJSON(handler echo.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = handler(e.NewContext(req, rec))
	return rec
}

func TestProcessPaymentRejectsBadNonce(t *testing.T) {
	client := &fakeClient{}
	handler, _ := newCheckoutTestHarness(client, newFakeOrders())

	rec := postJSON(handler.ProcessPayment, "/api/v1/checkout",
		`{"nonce":"bogus","order_id":42}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProcessPaymentRedirectsToApproval(t *testing.T) {
	order := &model.Order{
		ID:            42,
		Total:         decimal.RequireFromString("50.00"),
		Currency:      "USD",
		PaymentMethod: model.GatewayID,
		Status:        model.OrderStatusPending,
	}
	client := &fakeClient{
		createOrderResult: &wire.Order{
			ID:     "PP-ORDER-1",
			Status: wire.StatusCreated,
			Links:  []wire.Link{{Href: "https://paypal.test/approve", Rel: "approve"}},
		},
	}
	handler, nonces := newCheckoutTestHarness(client, newFakeOrders(order))

	nonce, err := nonces.Issue(auth.PurposeCheckoutCart)
	require.NoError(t, err)

	rec := postJSON(handler.ProcessPayment, "/api/v1/checkout",
		`{"nonce":"`+nonce+`","order_id":42}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result usecase.CheckoutResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "https://paypal.test/approve", result.RedirectURL)
	assert.Equal(t, "PP-ORDER-1", result.ProcessorOrderID)
}

func TestProcessPaymentUnknownOrder(t *testing.T) {
	handler, nonces := newCheckoutTestHarness(&fakeClient{}, newFakeOrders())
	nonce, err := nonces.Issue(auth.PurposeCheckoutCart)
	require.NoError(t, err)

	rec := postJSON(handler.ProcessPayment, "/api/v1/checkout",
		`{"nonce":"`+nonce+`","order_id":99}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateNonceRoundTrips(t *testing.T) {
	handler, nonces := newCheckoutTestHarness(&fakeClient{}, newFakeOrders())

	rec := postJSON(handler.CreateNonce, "/api/v1/checkout/nonce", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NoError(t, nonces.Validate(body["nonce"], auth.PurposeCheckoutCart))
}

func TestHandleReturnWithoutPayerRedirectsToCheckout(t *testing.T) {
	client := &fakeClient{}
	handler, _ := newCheckoutTestHarness(client, newFakeOrders())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/return?token=PP-ORDER-1", nil)
	rec := httptest.NewRecorder()
	_ = handler.HandleReturn(e.NewContext(req, rec))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, testCheckoutURL, rec.Header().Get("Location"))
	// Approval never completed, so nothing was captured.
	assert.Zero(t, client.captureCalls)
}

func TestHandleReturnCapturesAndRedirects(t *testing.T) {
	order := &model.Order{
		ID:            42,
		Total:         decimal.RequireFromString("50.00"),
		Currency:      "USD",
		PaymentMethod: model.GatewayID,
		Status:        model.OrderStatusPending,
	}
	client := &fakeClient{
		captureOrderResult: &wire.Order{
			ID:     "PP-ORDER-1",
			Status: wire.StatusCompleted,
			PurchaseUnits: []wire.PurchaseUnit{
				{
					ReferenceID: "42",
					Payments: &wire.PaymentCollection{
						Captures: []wire.Capture{{ID: "CAP1", Status: wire.StatusCompleted}},
					},
				},
			},
		},
	}
	handler, _ := newCheckoutTestHarness(client, newFakeOrders(order))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/return?token=PP-ORDER-1&PayerID=PAYER1", nil)
	rec := httptest.NewRecorder()
	_ = handler.HandleReturn(e.NewContext(req, rec))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://shop.example.com/order-received", rec.Header().Get("Location"))
	assert.Equal(t, model.OrderStatusProcessing, order.Status)
	assert.Equal(t, "CAP1", order.Meta(model.MetaTransactionID))
}
