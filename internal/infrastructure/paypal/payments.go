package paypal

import (
	"context"
	"fmt"
	"net/http"

	wire "github.com/checkoutlabs/paypal-gateway/internal/domain/paypal"
)

// CreateOrder creates a processor order.
// POST /v2/checkout/orders
func (c *Client) CreateOrder(ctx context.Context, req *wire.OrderRequest) (*wire.Order, error) {
	var order wire.Order
	if err := c.request(ctx, http.MethodPost, "v2/checkout/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CaptureOrder captures an approved order.
// POST /v2/checkout/orders/{token}/capture
func (c *Client) CaptureOrder(ctx context.Context, token string, req *wire.OrderRequest) (*wire.Order, error) {
	var order wire.Order
	path := fmt.Sprintf("v2/checkout/orders/%s/capture", token)
	if err := c.request(ctx, http.MethodPost, path, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// AuthorizeOrder places an authorization hold on an approved order.
// POST /v2/checkout/orders/{token}/authorize
func (c *Client) AuthorizeOrder(ctx context.Context, token string, req *wire.OrderRequest) (*wire.Order, error) {
	var order wire.Order
	path := fmt.Sprintf("v2/checkout/orders/%s/authorize", token)
	if err := c.request(ctx, http.MethodPost, path, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// RefundCapture refunds a captured transaction by its capture id.
// POST /v2/payments/captures/{id}/refund
func (c *Client) RefundCapture(ctx context.Context, captureID string, req *wire.RefundRequest) (*wire.Refund, error) {
	var refund wire.Refund
	path := fmt.Sprintf("v2/payments/captures/%s/refund", captureID)
	if err := c.request(ctx, http.MethodPost, path, req, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

// CreateAgreementToken creates a billing agreement token for
// merchant-initiated billing.
// POST /v1/billing-agreements/agreement-tokens
func (c *Client) CreateAgreementToken(ctx context.Context, req *wire.AgreementTokenRequest) (*wire.AgreementToken, error) {
	var token wire.AgreementToken
	if err := c.request(ctx, http.MethodPost, "v1/billing-agreements/agreement-tokens", req, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// CreateBillingAgreement converts an approved agreement token into a
// billing agreement.
// POST /v1/billing-agreements/agreements
func (c *Client) CreateBillingAgreement(ctx context.Context, tokenID string) (*wire.Agreement, error) {
	var agreement wire.Agreement
	body := map[string]string{"token_id": tokenID}
	if err := c.request(ctx, http.MethodPost, "v1/billing-agreements/agreements", body, &agreement); err != nil {
		return nil, err
	}
	return &agreement, nil
}

// UserInfo fetches the identity of the configured credentials; used as a
// connectivity test.
// GET /v1/identity/oauth2/userinfo
func (c *Client) UserInfo(ctx context.Context) (*wire.UserInfo, error) {
	var info wire.UserInfo
	if err := c.request(ctx, http.MethodGet, "v1/identity/oauth2/userinfo?schema=paypalv1.1", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
