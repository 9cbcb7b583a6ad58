package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Nonce purposes bind a token to one action so a token minted for the
// checkout form cannot be replayed against another endpoint.
const (
	PurposeCheckoutCart = "checkout_cart"
)

var ErrInvalidNonce = errors.New("invalid or expired nonce")

// NonceManager issues and validates short-lived HMAC tokens that gate the
// checkout endpoints against cross-site request forgery.
type NonceManager struct {
	secret []byte
	ttl    time.Duration
}

func NewNonceManager(secret string, ttl time.Duration) *NonceManager {
	return &NonceManager{secret: []byte(secret), ttl: ttl}
}

// Issue mints a nonce for the given purpose.
func (m *NonceManager) Issue(purpose string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"jti":     uuid.New().String(),
		"purpose": purpose,
		"iat":     now.Unix(),
		"exp":     now.Add(m.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign nonce: %w", err)
	}
	return signed, nil
}

// Validate checks the signature, expiry, and purpose of a nonce. Any
// failure is reported as ErrInvalidNonce so callers can answer with a
// single unauthorized response.
func (m *NonceManager) Validate(token, purpose string) error {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidNonce
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ErrInvalidNonce
	}
	if got, _ := claims["purpose"].(string); got != purpose {
		return ErrInvalidNonce
	}
	return nil
}
