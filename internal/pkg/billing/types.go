package billing

import (
	"errors"
	"time"
)

// Sentinel errors of the billing core. Gateway and reconciliation failures
// wrap these so callers can map them to stable API error codes.
var (
	ErrInvalidPlan    = errors.New("invalid plan type")
	ErrAuth           = errors.New("caller identity could not be established")
	ErrGateway        = errors.New("payment gateway request failed")
	ErrReconciliation = errors.New("payment state could not be reconciled")
	ErrDrift          = errors.New("local billing state drifted from gateway")
)

// IntentResult is returned to the client after intent creation. It carries
// only the opaque client secret and display metadata, never gateway
// credentials.
type IntentResult struct {
	ClientSecret string `json:"client_secret"`
	CustomerID   string `json:"customer_id"`
	PaymentType  string `json:"payment_type"`
	AmountCents  int64  `json:"amount"`
	PriceID      string `json:"price_id,omitempty"`
}

// ConfirmInput identifies the intent the client reports as locally confirmed.
// Only the opaque intent id is trusted; the authoritative status is always
// re-fetched from the gateway.
type ConfirmInput struct {
	PaymentIntentID string
	SetupIntentID   string
	PaymentType     string
	PriceID         string
}

// StatusResult is the outcome of one reconciliation attempt.
type StatusResult struct {
	Success bool       `json:"success"`
	Status  string     `json:"status"`
	Message string     `json:"message"`
	EndsAt  *time.Time `json:"ends_at,omitempty"`
}

// SubscriptionState is the derived entitlement view of one user.
type SubscriptionState struct {
	IsSubscribed bool       `json:"is_subscribed"`
	Plan         string     `json:"plan,omitempty"`
	Status       string     `json:"status"`
	EndsAt       *time.Time `json:"ends_at,omitempty"`
}
