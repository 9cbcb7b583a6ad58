package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkoutlabs/paypal-gateway/internal/config"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)
}

const validConfig = `
service:
  name: paypal-gateway
  environment: test
  public_url: https://pay.example.com
  checkout_url: https://shop.example.com/checkout
  success_url: https://shop.example.com/order-received
  nonce_secret: test-secret
paypal:
  mode: sandbox
  intent: capture
  payment_type: standard
  bn_code: CheckoutLabs_SP
  sandbox:
    client_id: sb-client
    secret: sb-secret
    connection_status: connected
server:
  http:
    host: 127.0.0.1
    port: 8080
`

func TestLoadConfig(t *testing.T) {
	writeConfig(t, validConfig)

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sandbox", cfg.PayPal.Mode)
	assert.Equal(t, "capture", cfg.PayPal.Intent)
	assert.Equal(t, "sb-client", cfg.PayPal.Active().ClientID)
	assert.Equal(t, config.ConnectionStatusConnected, cfg.PayPal.Active().ConnectionStatus)
	assert.Equal(t, "https://api-m.sandbox.paypal.com/", cfg.PayPal.BaseURL("sandbox"))
	assert.Equal(t, "https://api-m.paypal.com/", cfg.PayPal.BaseURL("live"))
}

func TestLoadConfigMissingActiveCredentials(t *testing.T) {
	writeConfig(t, `
service:
  public_url: https://pay.example.com
  checkout_url: https://shop.example.com/checkout
  success_url: https://shop.example.com/order-received
  nonce_secret: test-secret
paypal:
  mode: live
  intent: capture
  payment_type: standard
  sandbox:
    client_id: sb-client
    secret: sb-secret
`)

	_, err := config.LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "live mode requires client_id and secret")
}

func TestLoadConfigRejectsUnknownMode(t *testing.T) {
	writeConfig(t, `
service:
  public_url: https://pay.example.com
  checkout_url: https://shop.example.com/checkout
  success_url: https://shop.example.com/order-received
  nonce_secret: test-secret
paypal:
  mode: staging
  intent: capture
  payment_type: standard
  sandbox:
    client_id: sb-client
    secret: sb-secret
`)

	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigAPIBaseOverride(t *testing.T) {
	writeConfig(t, validConfig)

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	cfg.PayPal.Sandbox.APIBase = "http://127.0.0.1:9999/"
	assert.Equal(t, "http://127.0.0.1:9999/", cfg.PayPal.BaseURL("sandbox"))
}
