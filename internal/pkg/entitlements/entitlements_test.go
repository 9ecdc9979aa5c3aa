package entitlements

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AvaliaJa/AvaliaJa/app/models"
)

func TestIsEntitled(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 1, 0)
	past := now.AddDate(0, -1, 0)

	tests := []struct {
		name string
		sub  *models.Subscriber
		want bool
	}{
		{name: "nil record", sub: nil, want: false},
		{
			name: "active without end date",
			sub:  &models.Subscriber{SubscriptionStatus: models.SubscriptionStatusActive},
			want: true,
		},
		{
			name: "active with future end",
			sub:  &models.Subscriber{SubscriptionStatus: models.SubscriptionStatusActive, EndsAt: &future},
			want: true,
		},
		{
			name: "active but past end",
			sub:  &models.Subscriber{SubscriptionStatus: models.SubscriptionStatusActive, EndsAt: &past},
			want: false,
		},
		{
			name: "pending",
			sub:  &models.Subscriber{SubscriptionStatus: models.SubscriptionStatusPending, EndsAt: &future},
			want: false,
		},
		{
			name: "inactive",
			sub:  &models.Subscriber{SubscriptionStatus: models.SubscriptionStatusInactive},
			want: false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, IsEntitled(tc.sub, now))
		})
	}
}

func TestRestaurantPlanStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 1, 0)
	past := now.AddDate(0, -1, 0)

	tests := []struct {
		name string
		sub  *models.Subscriber
		want string
	}{
		{name: "no record means trial", sub: nil, want: models.PlanStatusTrial},
		{
			name: "active and entitled",
			sub:  &models.Subscriber{SubscriptionStatus: models.SubscriptionStatusActive, EndsAt: &future},
			want: models.PlanStatusActive,
		},
		{
			name: "active but lapsed",
			sub:  &models.Subscriber{SubscriptionStatus: models.SubscriptionStatusActive, EndsAt: &past},
			want: models.PlanStatusExpired,
		},
		{
			name: "inactive after paying",
			sub:  &models.Subscriber{SubscriptionStatus: models.SubscriptionStatusInactive, LastPaidAt: &past},
			want: models.PlanStatusExpired,
		},
		{
			name: "inactive without ever paying",
			sub:  &models.Subscriber{SubscriptionStatus: models.SubscriptionStatusInactive},
			want: models.PlanStatusCanceled,
		},
		{
			name: "pending stays trial",
			sub:  &models.Subscriber{SubscriptionStatus: models.SubscriptionStatusPending},
			want: models.PlanStatusTrial,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, RestaurantPlanStatus(tc.sub, now))
		})
	}
}
