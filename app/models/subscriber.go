package models

import "time"

// Plan types offered at checkout. Mensal bills as a recurring Stripe
// subscription; semestral and anual are one-time payments sized as the full
// multi-installment total.
const (
	PlanTypeMensal    = "mensal"
	PlanTypeSemestral = "semestral"
	PlanTypeAnual     = "anual"
)

const (
	PaymentTypePayment      = "payment"
	PaymentTypeSubscription = "subscription"
)

const (
	SubscriptionStatusPending  = "pending"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusInactive = "inactive"
)

// Subscriber mirrors a user's billing state. Stripe is the source of truth;
// this row is a cache that the reconciler and status checker keep in sync.
// It is created with status pending before the client ever sees a client
// secret, so reconciliation always has a row to transition.
type Subscriber struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	StripeCustomerID     string     `gorm:"type:varchar(191);not null;index" json:"stripe_customer_id"`
	PlanType             string     `gorm:"type:varchar(20);not null" json:"plan_type"`
	PaymentType          string     `gorm:"type:varchar(20);not null;default:'payment'" json:"payment_type"`
	SubscriptionStatus   string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"subscription_status"`
	StripeSubscriptionID string     `gorm:"type:varchar(191);default:''" json:"stripe_subscription_id"`
	LastPaymentIntentID  string     `gorm:"type:varchar(191);default:''" json:"-"`
	LastSetupIntentID    string     `gorm:"type:varchar(191);default:''" json:"-"`
	LastPaidAt           *time.Time `gorm:"type:timestamp;default:null" json:"last_paid_at,omitempty"`
	EndsAt               *time.Time `gorm:"type:timestamp;default:null" json:"ends_at,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsValidPlanType reports whether the given plan type is one we sell.
func IsValidPlanType(planType string) bool {
	switch planType {
	case PlanTypeMensal, PlanTypeSemestral, PlanTypeAnual:
		return true
	default:
		return false
	}
}
