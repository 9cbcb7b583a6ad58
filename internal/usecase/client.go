package usecase

import (
	"context"

	wire "github.com/checkoutlabs/paypal-gateway/internal/domain/paypal"
)

// ProcessorClient is the surface of the PayPal REST client the services
// depend on. The concrete client lives in infrastructure/paypal.
type ProcessorClient interface {
	CreateOrder(ctx context.Context, req *wire.OrderRequest) (*wire.Order, error)
	CaptureOrder(ctx context.Context, token string, req *wire.OrderRequest) (*wire.Order, error)
	AuthorizeOrder(ctx context.Context, token string, req *wire.OrderRequest) (*wire.Order, error)
	RefundCapture(ctx context.Context, captureID string, req *wire.RefundRequest) (*wire.Refund, error)
	CreateAgreementToken(ctx context.Context, req *wire.AgreementTokenRequest) (*wire.AgreementToken, error)
	CreateBillingAgreement(ctx context.Context, tokenID string) (*wire.Agreement, error)
	UserInfo(ctx context.Context) (*wire.UserInfo, error)
	CreateWebhook(ctx context.Context, listenerURL string, eventTypes []string) (*wire.WebhookRegistration, error)
	DeleteWebhook(ctx context.Context, webhookID string) error
	VerifyWebhookSignature(ctx context.Context, req *wire.VerifySignatureRequest) (*wire.VerifySignatureResponse, error)
}
