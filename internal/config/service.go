package config

// ConnectionStatus reports whether PayPal credentials for a mode have been
// verified against the identity endpoint.
type ConnectionStatus string

const (
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
)

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	// PublicURL is the externally reachable base URL of this gateway; the
	// payer approval return and webhook listener URLs are built from it.
	PublicURL string `yaml:"public_url" validate:"required,url"`
	// CheckoutURL is where failed or cancelled payments redirect back to.
	CheckoutURL string `yaml:"checkout_url" validate:"required,url"`
	// SuccessURL is the post-payment landing page.
	SuccessURL  string `yaml:"success_url" validate:"required,url"`
	NonceSecret string `yaml:"nonce_secret" validate:"required"`
	// DebugLog gates info/debug logging; error-level integration faults
	// are recorded regardless.
	DebugLog bool `yaml:"debug_log"`
}

type PayPalConfig struct {
	// Mode selects which credential set is active.
	Mode string `yaml:"mode" validate:"required,oneof=live sandbox"`
	// Intent is the checkout flow: capture takes funds immediately,
	// authorize places a hold that is captured later.
	Intent string `yaml:"intent" validate:"oneof=capture authorize"`
	// PaymentType standard: redirect approval, smart: client-side buttons.
	PaymentType string `yaml:"payment_type" validate:"oneof=standard smart"`
	// BNCode is the partner attribution id sent on every API call.
	BNCode  string     `yaml:"bn_code"`
	Live    ModeConfig `yaml:"live"`
	Sandbox ModeConfig `yaml:"sandbox"`
}

type ModeConfig struct {
	ClientID         string           `yaml:"client_id"`
	Secret           string           `yaml:"secret"`
	AccountID        string           `yaml:"account_id"`
	WebhookID        string           `yaml:"webhook_id"`
	ConnectionStatus ConnectionStatus `yaml:"connection_status" validate:"omitempty,oneof=connected disconnected"`
	// APIBase overrides the PayPal REST host; defaults per mode.
	APIBase string `yaml:"api_base"`
}

const (
	liveAPIBase    = "https://api-m.paypal.com/"
	sandboxAPIBase = "https://api-m.sandbox.paypal.com/"
)

// Active returns the credential set for the configured mode.
func (p *PayPalConfig) Active() *ModeConfig {
	if p.Mode == "live" {
		return &p.Live
	}
	return &p.Sandbox
}

// ModeConfigFor returns the credential set for an explicit mode, or nil for
// an unknown mode.
func (p *PayPalConfig) ModeConfigFor(mode string) *ModeConfig {
	switch mode {
	case "live":
		return &p.Live
	case "sandbox":
		return &p.Sandbox
	}
	return nil
}

// BaseURL returns the REST host for a mode, honoring the APIBase override.
func (p *PayPalConfig) BaseURL(mode string) string {
	mc := p.ModeConfigFor(mode)
	if mc != nil && mc.APIBase != "" {
		return mc.APIBase
	}
	if mode == "live" {
		return liveAPIBase
	}
	return sandboxAPIBase
}
