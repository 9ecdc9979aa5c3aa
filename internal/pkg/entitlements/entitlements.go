package entitlements

import (
	"time"

	"github.com/AvaliaJa/AvaliaJa/app/models"
)

// Entitlement is derived from billing state, never stored as its own flag.

// IsEntitled reports whether a local billing record grants paid access at the
// given instant. A nil record never entitles.
func IsEntitled(sub *models.Subscriber, now time.Time) bool {
	if sub == nil {
		return false
	}
	if sub.SubscriptionStatus != models.SubscriptionStatusActive {
		return false
	}
	return sub.EndsAt == nil || now.Before(*sub.EndsAt)
}

// RestaurantPlanStatus maps a billing record to the restaurant-facing plan
// status label.
func RestaurantPlanStatus(sub *models.Subscriber, now time.Time) string {
	if sub == nil {
		return models.PlanStatusTrial
	}
	switch sub.SubscriptionStatus {
	case models.SubscriptionStatusActive:
		if IsEntitled(sub, now) {
			return models.PlanStatusActive
		}
		return models.PlanStatusExpired
	case models.SubscriptionStatusInactive:
		if sub.LastPaidAt != nil {
			return models.PlanStatusExpired
		}
		return models.PlanStatusCanceled
	default:
		return models.PlanStatusTrial
	}
}
