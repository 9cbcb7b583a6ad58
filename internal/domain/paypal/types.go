// Package paypal holds the wire types exchanged with the PayPal REST API.
package paypal

import "encoding/json"

// Checkout intents.
const (
	IntentCapture   = "CAPTURE"
	IntentAuthorize = "AUTHORIZE"
)

// Processor-side order and transaction statuses.
const (
	StatusCreated   = "CREATED"
	StatusApproved  = "APPROVED"
	StatusCompleted = "COMPLETED"
	StatusVoided    = "VOIDED"
)

// Webhook event types the gateway subscribes to.
const (
	EventCaptureCompleted    = "PAYMENT.CAPTURE.COMPLETED"
	EventCaptureRefunded     = "PAYMENT.CAPTURE.REFUNDED"
	EventCaptureDenied       = "PAYMENT.CAPTURE.DENIED"
	EventAuthorizationVoided = "PAYMENT.AUTHORIZATION.VOIDED"
)

// VerificationStatusSuccess is the only accepted signature verification
// result; anything else fails closed.
const VerificationStatusSuccess = "SUCCESS"

// APIResponse carries the debug correlation id PayPal returns in the
// Paypal-Debug-Id response header. Embed it in response types.
type APIResponse struct {
	DebugID string `json:"debug_id,omitempty"`
}

// SetDebugID implements DebugCarrier.
func (r *APIResponse) SetDebugID(id string) { r.DebugID = id }

// DebugCarrier is implemented by responses that record the debug id.
type DebugCarrier interface {
	SetDebugID(id string)
}

// Money is an amount/currency pair; Value stays a decimal string on the wire.
type Money struct {
	Value        string `json:"value"`
	CurrencyCode string `json:"currency_code"`
}

// Link is a HATEOAS link on a resource.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel,omitempty"`
	Method string `json:"method,omitempty"`
}

// SellerReceivableBreakdown itemizes a capture: gross, processor fee, and
// the net payout.
type SellerReceivableBreakdown struct {
	GrossAmount *Money `json:"gross_amount,omitempty"`
	PaypalFee   *Money `json:"paypal_fee,omitempty"`
	NetAmount   *Money `json:"net_amount,omitempty"`
}

// Capture is a completed or pending capture inside a purchase unit.
type Capture struct {
	ID                        string                     `json:"id"`
	Status                    string                     `json:"status,omitempty"`
	Amount                    *Money                     `json:"amount,omitempty"`
	SellerReceivableBreakdown *SellerReceivableBreakdown `json:"seller_receivable_breakdown,omitempty"`
}

// Authorization is a hold placed on the payer's funds.
type Authorization struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
	Amount *Money `json:"amount,omitempty"`
}

// PaymentCollection nests the transactions of a purchase unit.
type PaymentCollection struct {
	Captures       []Capture       `json:"captures,omitempty"`
	Authorizations []Authorization `json:"authorizations,omitempty"`
}

// PurchaseUnit round-trips the local order id through reference_id.
type PurchaseUnit struct {
	ReferenceID string             `json:"reference_id,omitempty"`
	Amount      *Money             `json:"amount,omitempty"`
	Payments    *PaymentCollection `json:"payments,omitempty"`
}

// ApplicationContext holds the redirect URLs for the approval flow.
type ApplicationContext struct {
	ReturnURL string `json:"return_url,omitempty"`
	CancelURL string `json:"cancel_url,omitempty"`
}

// PaymentSourceToken references a billing agreement on order submission.
type PaymentSourceToken struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// PaymentSource wraps the token payment source variant.
type PaymentSource struct {
	Token *PaymentSourceToken `json:"token,omitempty"`
}

// TokenTypeBillingAgreement is the payment source token type for
// agreement-backed payments.
const TokenTypeBillingAgreement = "BILLING_AGREEMENT"

// OrderRequest is the body of order create/capture/authorize calls. All
// fields are optional on capture/authorize; the subscription flow supplies
// a payment source.
type OrderRequest struct {
	Intent             string              `json:"intent,omitempty"`
	PurchaseUnits      []PurchaseUnit      `json:"purchase_units,omitempty"`
	ApplicationContext *ApplicationContext `json:"application_context,omitempty"`
	PaymentSource      *PaymentSource      `json:"payment_source,omitempty"`
}

// Order is the processor-side order resource.
type Order struct {
	APIResponse

	ID            string         `json:"id"`
	Status        string         `json:"status,omitempty"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units,omitempty"`
	Links         []Link         `json:"links,omitempty"`
}

// ApprovalURL returns the payer approval link, or "" when absent.
func (o *Order) ApprovalURL() string {
	for _, l := range o.Links {
		if l.Rel == "approve" {
			return l.Href
		}
	}
	return ""
}

// ReferenceID returns the local order id round-tripped through the first
// purchase unit.
func (o *Order) ReferenceID() string {
	if len(o.PurchaseUnits) == 0 {
		return ""
	}
	return o.PurchaseUnits[0].ReferenceID
}

// CaptureID returns the transaction id of the first capture, or "".
func (o *Order) CaptureID() string {
	if len(o.PurchaseUnits) == 0 || o.PurchaseUnits[0].Payments == nil {
		return ""
	}
	caps := o.PurchaseUnits[0].Payments.Captures
	if len(caps) == 0 {
		return ""
	}
	return caps[0].ID
}

// AuthorizationID returns the transaction id of the first authorization, or "".
func (o *Order) AuthorizationID() string {
	if len(o.PurchaseUnits) == 0 || o.PurchaseUnits[0].Payments == nil {
		return ""
	}
	auths := o.PurchaseUnits[0].Payments.Authorizations
	if len(auths) == 0 {
		return ""
	}
	return auths[0].ID
}

// CaptureBreakdown returns the receivable breakdown of the first capture,
// or nil when the processor omitted it.
func (o *Order) CaptureBreakdown() *SellerReceivableBreakdown {
	if len(o.PurchaseUnits) == 0 || o.PurchaseUnits[0].Payments == nil {
		return nil
	}
	caps := o.PurchaseUnits[0].Payments.Captures
	if len(caps) == 0 {
		return nil
	}
	return caps[0].SellerReceivableBreakdown
}

// RefundRequest is the body of a refund-by-capture-id call.
type RefundRequest struct {
	Amount *Money `json:"amount,omitempty"`
}

// Refund is the processor refund resource.
type Refund struct {
	APIResponse

	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
}

// AgreementTokenRequest creates a billing agreement token for
// merchant-initiated billing.
type AgreementTokenRequest struct {
	Description string              `json:"description,omitempty"`
	Payer       *AgreementPayer     `json:"payer,omitempty"`
	Plan        *AgreementTokenPlan `json:"plan,omitempty"`
}

// AgreementPayer names the payment method for an agreement.
type AgreementPayer struct {
	PaymentMethod string `json:"payment_method"`
}

// AgreementTokenPlan configures the agreement's merchant preferences.
type AgreementTokenPlan struct {
	Type                string               `json:"type"`
	MerchantPreferences *MerchantPreferences `json:"merchant_preferences,omitempty"`
}

// MerchantPreferences holds the agreement approval redirect URLs.
type MerchantPreferences struct {
	ReturnURL           string `json:"return_url,omitempty"`
	CancelURL           string `json:"cancel_url,omitempty"`
	SkipShippingAddress bool   `json:"skip_shipping_address,omitempty"`
}

// AgreementToken is the created agreement token.
type AgreementToken struct {
	APIResponse

	TokenID string `json:"token_id"`
}

// Agreement is a billing agreement created from an approved token.
type Agreement struct {
	APIResponse

	ID string `json:"id"`
}

// WebhookRegistration is a processor-side webhook subscription.
type WebhookRegistration struct {
	APIResponse

	ID         string             `json:"id"`
	URL        string             `json:"url,omitempty"`
	EventTypes []WebhookEventType `json:"event_types,omitempty"`
}

// WebhookEventType names a subscribed event type on registration.
type WebhookEventType struct {
	Name string `json:"name"`
}

// WebhookRegistrationRequest is the body of a webhook create call.
type WebhookRegistrationRequest struct {
	URL        string             `json:"url"`
	EventTypes []WebhookEventType `json:"event_types"`
}

// VerifySignatureRequest carries the five transport headers, the stored
// webhook id, and the raw decoded event to the processor's verification
// endpoint.
type VerifySignatureRequest struct {
	AuthAlgo         string          `json:"auth_algo"`
	CertURL          string          `json:"cert_url"`
	TransmissionID   string          `json:"transmission_id"`
	TransmissionSig  string          `json:"transmission_sig"`
	TransmissionTime string          `json:"transmission_time"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

// VerifySignatureResponse is the processor's verdict.
type VerifySignatureResponse struct {
	APIResponse

	VerificationStatus string `json:"verification_status"`
}

// Verified reports whether the processor accepted the signature.
func (r *VerifySignatureResponse) Verified() bool {
	return r != nil && r.VerificationStatus == VerificationStatusSuccess
}

// UserInfo is the identity endpoint response used as a credentials
// connectivity test.
type UserInfo struct {
	APIResponse

	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// RelatedIDs links a capture back to the transaction it settles.
type RelatedIDs struct {
	AuthorizationID string `json:"authorization_id,omitempty"`
}

// SupplementaryData is extra resource context on webhook events.
type SupplementaryData struct {
	RelatedIDs *RelatedIDs `json:"related_ids,omitempty"`
}

// EventResource is the event-specific payload. Only the fields the
// gateway reads are modeled; the raw event is persisted verbatim.
type EventResource struct {
	ID                        string                     `json:"id,omitempty"`
	Status                    string                     `json:"status,omitempty"`
	Amount                    *Money                     `json:"amount,omitempty"`
	Links                     []Link                     `json:"links,omitempty"`
	SupplementaryData         *SupplementaryData         `json:"supplementary_data,omitempty"`
	SellerReceivableBreakdown *SellerReceivableBreakdown `json:"seller_receivable_breakdown,omitempty"`
}

// Event is an inbound webhook notification. Delivery is at-least-once and
// unordered; the same id may arrive more than once.
type Event struct {
	ID         string        `json:"id"`
	EventType  string        `json:"event_type"`
	CreateTime string        `json:"create_time,omitempty"`
	Resource   EventResource `json:"resource"`
}

// AuthorizationUpgradeID returns the prior authorization id when a capture
// event settles an earlier authorization, or "".
func (e *Event) AuthorizationUpgradeID() string {
	if e.Resource.SupplementaryData == nil || e.Resource.SupplementaryData.RelatedIDs == nil {
		return ""
	}
	return e.Resource.SupplementaryData.RelatedIDs.AuthorizationID
}
