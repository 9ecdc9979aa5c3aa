package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AvaliaJa/AvaliaJa/app/models"
)

func TestPlanByType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		planType    string
		wantAmount  int64
		wantPayment string
		wantMonths  int
		wantErr     bool
	}{
		{name: "mensal", planType: "mensal", wantAmount: 9700, wantPayment: models.PaymentTypeSubscription, wantMonths: 1},
		{name: "semestral", planType: "semestral", wantAmount: 52200, wantPayment: models.PaymentTypePayment, wantMonths: 6},
		{name: "anual", planType: "anual", wantAmount: 93600, wantPayment: models.PaymentTypePayment, wantMonths: 12},
		{name: "trims and lowercases", planType: "  Mensal ", wantAmount: 9700, wantPayment: models.PaymentTypeSubscription, wantMonths: 1},
		{name: "unknown plan", planType: "weekly", wantErr: true},
		{name: "empty plan", planType: "", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			plan, err := PlanByType(tc.planType)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPlan)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.wantAmount, plan.AmountCents)
			assert.Equal(t, tc.wantPayment, plan.PaymentType)
			assert.Equal(t, tc.wantMonths, plan.Months)
		})
	}
}

func TestPlanExpiryFrom(t *testing.T) {
	t.Parallel()

	paid := time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC)

	mensal, _ := PlanByType(models.PlanTypeMensal)
	semestral, _ := PlanByType(models.PlanTypeSemestral)
	anual, _ := PlanByType(models.PlanTypeAnual)

	// AddDate normalizes Jan 31 + 1 month to Mar 3.
	assert.Equal(t, time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC), mensal.ExpiryFrom(paid))
	assert.Equal(t, time.Date(2025, 7, 31, 10, 0, 0, 0, time.UTC), semestral.ExpiryFrom(paid))
	assert.Equal(t, time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC), anual.ExpiryFrom(paid))
}

func TestPlanIsRecurring(t *testing.T) {
	t.Parallel()

	mensal, _ := PlanByType(models.PlanTypeMensal)
	semestral, _ := PlanByType(models.PlanTypeSemestral)

	assert.True(t, mensal.IsRecurring())
	assert.False(t, semestral.IsRecurring())
	assert.Empty(t, semestral.PriceID())
}
