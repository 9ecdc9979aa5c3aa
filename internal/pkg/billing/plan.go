package billing

import (
	"strings"
	"time"

	"github.com/AvaliaJa/AvaliaJa/app/models"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/env"
)

// Plan describes one sellable plan. Amounts are fixed integer cents (BRL);
// semestral and anual are charged once as the full multi-installment total,
// mensal bills as a recurring Stripe subscription against a price id.
type Plan struct {
	Type        string
	PaymentType string
	AmountCents int64
	Months      int
}

var plans = map[string]Plan{
	models.PlanTypeMensal: {
		Type:        models.PlanTypeMensal,
		PaymentType: models.PaymentTypeSubscription,
		AmountCents: 9700,
		Months:      1,
	},
	models.PlanTypeSemestral: {
		Type:        models.PlanTypeSemestral,
		PaymentType: models.PaymentTypePayment,
		AmountCents: 52200, // 6 x 8700
		Months:      6,
	},
	models.PlanTypeAnual: {
		Type:        models.PlanTypeAnual,
		PaymentType: models.PaymentTypePayment,
		AmountCents: 93600, // 12 x 7800
		Months:      12,
	},
}

// PlanByType resolves a plan type string to its catalog entry.
func PlanByType(planType string) (Plan, error) {
	p, ok := plans[strings.ToLower(strings.TrimSpace(planType))]
	if !ok {
		return Plan{}, ErrInvalidPlan
	}
	return p, nil
}

// ExpiryFrom computes when access bought at t runs out.
func (p Plan) ExpiryFrom(t time.Time) time.Time {
	return t.AddDate(0, p.Months, 0)
}

// IsRecurring reports whether the plan bills as a gateway subscription.
func (p Plan) IsRecurring() bool {
	return p.PaymentType == models.PaymentTypeSubscription
}

// PriceID returns the configured Stripe price id for a recurring plan, empty
// for one-time plans.
func (p Plan) PriceID() string {
	if !p.IsRecurring() {
		return ""
	}
	return strings.TrimSpace(env.GetEnv("STRIPE_PRICE_MENSAL", ""))
}
