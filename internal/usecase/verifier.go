package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/checkoutlabs/paypal-gateway/internal/config"
	wire "github.com/checkoutlabs/paypal-gateway/internal/domain/paypal"
	"github.com/checkoutlabs/paypal-gateway/internal/domain/repository"
)

// settingWebhookIDPrefix keys the stored webhook id per mode.
const settingWebhookIDPrefix = "webhook_id_"

// TransmissionHeaders are the five signature headers PayPal sends with
// every webhook delivery. All five must be present; verification fails
// closed otherwise.
type TransmissionHeaders struct {
	AuthAlgo         string
	CertURL          string
	TransmissionID   string
	TransmissionSig  string
	TransmissionTime string
}

func (h TransmissionHeaders) complete() bool {
	return h.AuthAlgo != "" &&
		h.CertURL != "" &&
		h.TransmissionID != "" &&
		h.TransmissionSig != "" &&
		h.TransmissionTime != ""
}

// WebhookVerifier delegates signature verification to the processor's
// verify-webhook-signature endpoint. There is no local cryptography.
type WebhookVerifier struct {
	client   ProcessorClient
	settings repository.SettingRepository
	paypal   *config.PayPalConfig
	logger   *zap.Logger
}

func NewWebhookVerifier(
	client ProcessorClient,
	settings repository.SettingRepository,
	paypal *config.PayPalConfig,
	logger *zap.Logger,
) *WebhookVerifier {
	return &WebhookVerifier{
		client:   client,
		settings: settings,
		paypal:   paypal,
		logger:   logger,
	}
}

// Verify reports whether an inbound delivery carries a valid signature.
// A missing header, a missing webhook id, a transport failure, or any
// verification status other than SUCCESS all yield false.
func (v *WebhookVerifier) Verify(ctx context.Context, mode string, headers TransmissionHeaders, body json.RawMessage) bool {
	if !headers.complete() {
		v.logger.Warn("webhook delivery missing signature headers",
			zap.String("mode", mode))
		return false
	}

	webhookID := v.webhookID(ctx, mode)
	if webhookID == "" {
		v.logger.Warn("no webhook id registered for mode",
			zap.String("mode", mode))
		return false
	}

	resp, err := v.client.VerifyWebhookSignature(ctx, &wire.VerifySignatureRequest{
		AuthAlgo:         headers.AuthAlgo,
		CertURL:          headers.CertURL,
		TransmissionID:   headers.TransmissionID,
		TransmissionSig:  headers.TransmissionSig,
		TransmissionTime: headers.TransmissionTime,
		WebhookID:        webhookID,
		WebhookEvent:     body,
	})
	if err != nil {
		v.logger.Error("webhook signature verification call failed",
			zap.String("mode", mode),
			zap.Error(err))
		return false
	}
	if !resp.Verified() {
		v.logger.Warn("webhook signature rejected",
			zap.String("mode", mode),
			zap.String("verification_status", resp.VerificationStatus),
			zap.String("transmission_id", headers.TransmissionID))
		return false
	}
	return true
}

// webhookID prefers the id stored at registration time and falls back to
// the statically configured one.
func (v *WebhookVerifier) webhookID(ctx context.Context, mode string) string {
	if id, err := v.settings.Get(ctx, settingWebhookIDPrefix+mode); err == nil && id != "" {
		return id
	}
	if mc := v.paypal.ModeConfigFor(mode); mc != nil {
		return mc.WebhookID
	}
	return ""
}

// WebhookLifecycle registers and removes the processor-side webhook
// subscription, persisting the resulting id per mode.
type WebhookLifecycle struct {
	client   ProcessorClient
	settings repository.SettingRepository
	events   []string
	logger   *zap.Logger
}

func NewWebhookLifecycle(client ProcessorClient, settings repository.SettingRepository, events []string, logger *zap.Logger) *WebhookLifecycle {
	return &WebhookLifecycle{
		client:   client,
		settings: settings,
		events:   events,
		logger:   logger,
	}
}

// Register subscribes the listener URL to the gateway's event types and
// stores the webhook id for later verification and teardown.
func (l *WebhookLifecycle) Register(ctx context.Context, mode, listenerURL string) (string, error) {
	registration, err := l.client.CreateWebhook(ctx, listenerURL, l.events)
	if err != nil {
		return "", fmt.Errorf("failed to register webhook: %w", err)
	}
	if err := l.settings.Set(ctx, settingWebhookIDPrefix+mode, registration.ID); err != nil {
		return "", fmt.Errorf("failed to store webhook id: %w", err)
	}

	l.logger.Info("webhook registered",
		zap.String("mode", mode),
		zap.String("webhook_id", registration.ID),
		zap.String("url", listenerURL))
	return registration.ID, nil
}

// Unregister deletes the stored webhook subscription. A missing stored id
// is a no-op.
func (l *WebhookLifecycle) Unregister(ctx context.Context, mode string) error {
	key := settingWebhookIDPrefix + mode
	id, err := l.settings.Get(ctx, key)
	if err != nil || id == "" {
		return nil
	}

	if err := l.client.DeleteWebhook(ctx, id); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	if err := l.settings.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to clear webhook id: %w", err)
	}

	l.logger.Info("webhook unregistered",
		zap.String("mode", mode),
		zap.String("webhook_id", id))
	return nil
}
