package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsLinkUsable(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name   string
		waiter Waiter
		want   bool
	}{
		{name: "active without expiry", waiter: Waiter{IsActive: true}, want: true},
		{name: "active with future expiry", waiter: Waiter{IsActive: true, TokenExpiresAt: &future}, want: true},
		{name: "active but expired", waiter: Waiter{IsActive: true, TokenExpiresAt: &past}, want: false},
		{name: "inactive", waiter: Waiter{IsActive: false}, want: false},
		{name: "inactive with future expiry", waiter: Waiter{IsActive: false, TokenExpiresAt: &future}, want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.waiter.IsLinkUsable(now))
		})
	}
}

func TestWaiterValidate(t *testing.T) {
	t.Parallel()

	valid := Waiter{RestaurantID: 1, Name: "Ana", TrackingToken: "tok"}
	assert.NoError(t, valid.Validate())

	tooShort := Waiter{RestaurantID: 1, Name: "A", TrackingToken: "tok"}
	assert.Error(t, tooShort.Validate())

	badEmail := Waiter{RestaurantID: 1, Name: "Ana", Email: "not-an-email", TrackingToken: "tok"}
	assert.Error(t, badEmail.Validate())
}
