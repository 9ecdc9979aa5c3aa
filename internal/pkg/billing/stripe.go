package billing

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/AvaliaJa/AvaliaJa/internal/pkg/env"
)

const defaultGatewayTimeout = 15 * time.Second

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct {
	sc *client.API
}

// NewStripeGateway creates a gateway with an explicit HTTP timeout so a
// stalled Stripe call can never hang a request indefinitely.
func NewStripeGateway(secretKey string) *StripeGateway {
	backends := stripe.NewBackends(&http.Client{Timeout: defaultGatewayTimeout})
	return &StripeGateway{
		sc: client.New(strings.TrimSpace(secretKey), backends),
	}
}

// NewStripeGatewayFromEnv reads STRIPE_SECRET_KEY.
func NewStripeGatewayFromEnv() *StripeGateway {
	return NewStripeGateway(env.GetEnv("STRIPE_SECRET_KEY", ""))
}

// FindCustomerByEmail returns the first Stripe customer with the given email,
// or (nil, nil) when none exists. Searching before creating keeps one gateway
// customer per email no matter how often checkout is attempted.
func (g *StripeGateway) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	params := &stripe.CustomerListParams{
		ListParams: stripe.ListParams{Context: ctx},
		Email:      stripe.String(email),
	}
	params.Limit = stripe.Int64(1)

	iter := g.sc.Customers.List(params)
	for iter.Next() {
		c := iter.Customer()
		return &Customer{ID: c.ID, Email: c.Email}, nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: list customers: %v", ErrGateway, err)
	}
	return nil, nil
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, email, name string) (*Customer, error) {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
		Name:   stripe.String(name),
	}
	c, err := g.sc.Customers.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create customer: %v", ErrGateway, err)
	}
	return &Customer{ID: c.ID, Email: c.Email}, nil
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, customerID string, amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Customer: stripe.String(customerID),
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create payment intent: %v", ErrGateway, err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

func (g *StripeGateway) CreateSetupIntent(ctx context.Context, customerID string, metadata map[string]string) (*Intent, error) {
	params := &stripe.SetupIntentParams{
		Params:   stripe.Params{Context: ctx},
		Customer: stripe.String(customerID),
		AutomaticPaymentMethods: &stripe.SetupIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	si, err := g.sc.SetupIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create setup intent: %v", ErrGateway, err)
	}
	return &Intent{ID: si.ID, ClientSecret: si.ClientSecret, Status: string(si.Status)}, nil
}

func (g *StripeGateway) GetPaymentIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}}
	pi, err := g.sc.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("%w: get payment intent %s: %v", ErrGateway, id, err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

func (g *StripeGateway) GetSetupIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.SetupIntentParams{Params: stripe.Params{Context: ctx}}
	si, err := g.sc.SetupIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("%w: get setup intent %s: %v", ErrGateway, id, err)
	}
	out := &Intent{ID: si.ID, ClientSecret: si.ClientSecret, Status: string(si.Status)}
	if si.PaymentMethod != nil {
		out.PaymentMethodID = si.PaymentMethod.ID
	}
	return out, nil
}

func (g *StripeGateway) CreateSubscription(ctx context.Context, customerID, priceID, paymentMethodID string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		Params:   stripe.Params{Context: ctx},
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		DefaultPaymentMethod: stripe.String(paymentMethodID),
	}
	sub, err := g.sc.Subscriptions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create subscription: %v", ErrGateway, err)
	}
	return newSubscriptionFromStripe(sub), nil
}

func (g *StripeGateway) ListActiveSubscriptions(ctx context.Context, customerID string) ([]Subscription, error) {
	params := &stripe.SubscriptionListParams{
		ListParams: stripe.ListParams{Context: ctx},
		Customer:   stripe.String(customerID),
		Status:     stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	var subs []Subscription
	iter := g.sc.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, *newSubscriptionFromStripe(iter.Subscription()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: list subscriptions: %v", ErrGateway, err)
	}
	return subs, nil
}

func newSubscriptionFromStripe(sub *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:               sub.ID,
		Status:           string(sub.Status),
		CurrentPeriodEnd: time.Unix(sub.CurrentPeriodEnd, 0),
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		out.PriceID = sub.Items.Data[0].Price.ID
	}
	return out
}
