// Package paypal implements the REST client for the PayPal API.
package paypal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	wire "github.com/checkoutlabs/paypal-gateway/internal/domain/paypal"
)

// debugIDHeader is the correlation id PayPal attaches to responses; it is
// merged into the decoded body so callers can persist it with the order.
const debugIDHeader = "Paypal-Debug-Id"

// Success statuses across the endpoints the gateway calls: create order
// and refund return 201, webhook delete returns 204, the rest 200.
var successStatuses = map[int]bool{
	http.StatusOK:        true,
	http.StatusCreated:   true,
	http.StatusNoContent: true,
}

// APIError is a processor-facing failure: transport errors, non-success
// statuses, and undecodable bodies all surface as one of these. Message is
// always human-readable.
type APIError struct {
	Status  int
	Message string
	DebugID string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client issues authenticated requests against one PayPal environment.
// A bearer token is obtained per request via the client-credentials
// exchange; nothing is cached across calls, so there is no shared mutable
// state between request handlers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
	bnCode     string
	logger     *zap.Logger
}

// NewClient creates a client for one mode's credentials. baseURL must end
// with a slash.
func NewClient(baseURL, clientID, secret, bnCode string, logger *zap.Logger) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		// Outbound calls must fail fast rather than hang a request handler.
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		clientID:   clientID,
		secret:     secret,
		bnCode:     bnCode,
		logger:     logger,
	}
}

// bearer exchanges client credentials for an access token.
func (c *Client) bearer(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}

	auth := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.secret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("PayPal-Partner-Attribution-Id", c.bnCode)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &token); err != nil || token.AccessToken == "" {
		return "", fmt.Errorf("no access token in response (status %d)", resp.StatusCode)
	}

	return token.AccessToken, nil
}

// request performs one API call, decoding a success body into out. Failures
// come back as *APIError with a best-effort message; nothing panics or
// crosses the boundary untyped.
func (c *Client) request(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := c.bearer(ctx)
	if err != nil {
		c.logger.Error("Error getting authorization code",
			zap.Error(err))
		return &APIError{Message: err.Error()}
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &APIError{Message: fmt.Sprintf("failed to encode request body: %v", err)}
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &APIError{Message: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("PayPal-Partner-Attribution-Id", c.bnCode)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("PayPal request failed",
			zap.String("path", path),
			zap.Error(err))
		return &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Message: err.Error()}
	}

	debugID := resp.Header.Get(debugIDHeader)

	if !successStatuses[resp.StatusCode] {
		message := extractErrorMessage(respBody)
		if message == "" {
			message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		c.logger.Error("PayPal returned an error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message),
			zap.String("debug_id", debugID))
		return &APIError{Status: resp.StatusCode, Message: message, DebugID: debugID}
	}

	// Webhook delete answers 204 with no body.
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &APIError{Status: resp.StatusCode, Message: "invalid response body", DebugID: debugID}
		}
	}

	if dc, ok := out.(wire.DebugCarrier); ok && debugID != "" {
		dc.SetDebugID(debugID)
	}

	return nil
}

// extractErrorMessage pulls a readable message out of the two error shapes
// PayPal uses: name+message with optional details, and
// error+error_description from the OAuth surface.
func extractErrorMessage(body []byte) string {
	var decoded struct {
		Name    string `json:"name"`
		Message string `json:"message"`
		Details []struct {
			Issue       string `json:"issue"`
			Description string `json:"description"`
		} `json:"details"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return ""
	}

	if decoded.Name != "" && decoded.Message != "" {
		if len(decoded.Details) > 0 && decoded.Details[0].Issue != "" {
			if decoded.Details[0].Description != "" {
				return decoded.Details[0].Issue + " : " + decoded.Details[0].Description
			}
			return decoded.Details[0].Issue
		}
		return decoded.Name + " : " + decoded.Message
	}

	if decoded.Error != "" && decoded.ErrorDescription != "" {
		return decoded.Error + " : " + decoded.ErrorDescription
	}

	return ""
}
