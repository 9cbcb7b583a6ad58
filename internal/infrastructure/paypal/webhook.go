package paypal

import (
	"context"
	"net/http"

	wire "github.com/checkoutlabs/paypal-gateway/internal/domain/paypal"
)

// SubscribedEvents are the event types the gateway registers its webhook
// for. CAPTURE.DENIED is routed through the dispatcher's handler map.
var SubscribedEvents = []string{
	wire.EventCaptureCompleted,
	wire.EventCaptureRefunded,
	wire.EventAuthorizationVoided,
	wire.EventCaptureDenied,
}

// CreateWebhook registers a webhook listener URL with the processor.
// POST /v1/notifications/webhooks
func (c *Client) CreateWebhook(ctx context.Context, listenerURL string, eventTypes []string) (*wire.WebhookRegistration, error) {
	req := &wire.WebhookRegistrationRequest{URL: listenerURL}
	for _, name := range eventTypes {
		req.EventTypes = append(req.EventTypes, wire.WebhookEventType{Name: name})
	}

	var registration wire.WebhookRegistration
	if err := c.request(ctx, http.MethodPost, "v1/notifications/webhooks", req, &registration); err != nil {
		return nil, err
	}
	return &registration, nil
}

// DeleteWebhook removes a webhook registration.
// DELETE /v1/notifications/webhooks/{id}
func (c *Client) DeleteWebhook(ctx context.Context, webhookID string) error {
	return c.request(ctx, http.MethodDelete, "v1/notifications/webhooks/"+webhookID, nil, nil)
}

// VerifyWebhookSignature asks the processor to verify an inbound event's
// signature. No local cryptography is involved; PayPal's endpoint is the
// trust boundary.
// POST /v1/notifications/verify-webhook-signature
func (c *Client) VerifyWebhookSignature(ctx context.Context, req *wire.VerifySignatureRequest) (*wire.VerifySignatureResponse, error) {
	var result wire.VerifySignatureResponse
	if err := c.request(ctx, http.MethodPost, "v1/notifications/verify-webhook-signature", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
