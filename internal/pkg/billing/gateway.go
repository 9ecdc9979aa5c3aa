package billing

import (
	"context"
	"time"
)

// Gateway status strings mirror Stripe's terminal states.
const (
	IntentStatusSucceeded     = "succeeded"
	GatewaySubscriptionActive = "active"
)

// Customer is the gateway-side billing identity.
type Customer struct {
	ID    string
	Email string
}

// Intent is a payment or setup intent as seen by the gateway. For setup
// intents that reached a terminal success state, PaymentMethodID carries the
// confirmed payment method.
type Intent struct {
	ID              string
	ClientSecret    string
	Status          string
	PaymentMethodID string
}

// Subscription is a recurring gateway subscription.
type Subscription struct {
	ID               string
	Status           string
	PriceID          string
	CurrentPeriodEnd time.Time
}

// Gateway abstracts the payment provider. The billing service treats the
// gateway as the source of truth and the local database as a cache; every
// method re-reads live state rather than any local copy. Implementations
// must honor ctx and carry an explicit request timeout.
type Gateway interface {
	// FindCustomerByEmail returns the existing customer for an email or
	// (nil, nil) when none exists.
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	CreateCustomer(ctx context.Context, email, name string) (*Customer, error)

	CreatePaymentIntent(ctx context.Context, customerID string, amountCents int64, currency string, metadata map[string]string) (*Intent, error)
	CreateSetupIntent(ctx context.Context, customerID string, metadata map[string]string) (*Intent, error)
	GetPaymentIntent(ctx context.Context, id string) (*Intent, error)
	GetSetupIntent(ctx context.Context, id string) (*Intent, error)

	CreateSubscription(ctx context.Context, customerID, priceID, paymentMethodID string) (*Subscription, error)
	ListActiveSubscriptions(ctx context.Context, customerID string) ([]Subscription, error)
}
