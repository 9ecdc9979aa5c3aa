package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/AvaliaJa/AvaliaJa/app/models"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/entitlements"
)

// Service orchestrates checkout intents, reconciles payment state against the
// gateway and derives entitlement. The gateway is the source of truth; the
// local Subscriber row is a cache that reconciliation keeps in sync.
type Service struct {
	repo    Repository
	gateway Gateway
	now     func() time.Time
}

// NewService creates a billing service from an injected repository and gateway.
func NewService(repo Repository, gateway Gateway) *Service {
	return &Service{repo: repo, gateway: gateway, now: time.Now}
}

// NewServiceFromDB creates a billing service from a GORM DB handle using the
// Stripe gateway configured via environment.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), NewStripeGatewayFromEnv())
}

// CreateIntent starts a checkout for the given plan. It finds or creates the
// gateway customer by email, creates the matching intent (PaymentIntent for
// one-time plans, SetupIntent for the recurring plan) and upserts the local
// Subscriber with status pending BEFORE returning the client secret, so the
// reconciler always has a row to transition.
func (s *Service) CreateIntent(ctx context.Context, userID uint, planType string) (*IntentResult, error) {
	plan, err := PlanByType(planType)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuth
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	email := strings.TrimSpace(user.Email)
	if email == "" {
		return nil, ErrAuth
	}

	customer, err := s.gateway.FindCustomerByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		customer, err = s.gateway.CreateCustomer(ctx, email, user.Name)
		if err != nil {
			return nil, err
		}
	}

	metadata := map[string]string{
		"user_id":   strconv.FormatUint(uint64(userID), 10),
		"plan_type": plan.Type,
	}

	var intent *Intent
	priceID := ""
	if plan.IsRecurring() {
		priceID = plan.PriceID()
		intent, err = s.gateway.CreateSetupIntent(ctx, customer.ID, metadata)
	} else {
		intent, err = s.gateway.CreatePaymentIntent(ctx, customer.ID, plan.AmountCents, "brl", metadata)
	}
	if err != nil {
		return nil, err
	}

	sub, err := s.repo.GetSubscriberByUserID(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load subscriber: %w", err)
		}
		sub = &models.Subscriber{UserID: userID}
	}
	sub.StripeCustomerID = customer.ID
	sub.PlanType = plan.Type
	sub.PaymentType = plan.PaymentType
	sub.SubscriptionStatus = models.SubscriptionStatusPending
	if plan.IsRecurring() {
		sub.LastSetupIntentID = intent.ID
	} else {
		sub.LastPaymentIntentID = intent.ID
	}
	if err := s.repo.UpsertSubscriber(sub); err != nil {
		return nil, fmt.Errorf("persist pending subscriber: %w", err)
	}

	return &IntentResult{
		ClientSecret: intent.ClientSecret,
		CustomerID:   customer.ID,
		PaymentType:  plan.PaymentType,
		AmountCents:  plan.AmountCents,
		PriceID:      priceID,
	}, nil
}

// ConfirmPayment reconciles a client-reported completion against the gateway.
// The client only supplies the opaque intent id; success is decided by the
// re-fetched gateway state, never by a client-asserted boolean. Re-invoking
// with an intent id that already reconciled to active is a no-op returning the
// existing state.
func (s *Service) ConfirmPayment(ctx context.Context, userID uint, in ConfirmInput) (*StatusResult, error) {
	sub, err := s.repo.GetSubscriberByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no billing record for user", ErrReconciliation)
		}
		return nil, fmt.Errorf("load subscriber: %w", err)
	}

	switch in.PaymentType {
	case models.PaymentTypePayment:
		return s.confirmOneTime(ctx, sub, in.PaymentIntentID)
	case models.PaymentTypeSubscription:
		return s.confirmRecurring(ctx, sub, in)
	default:
		return nil, fmt.Errorf("%w: unknown payment type %q", ErrReconciliation, in.PaymentType)
	}
}

func (s *Service) confirmOneTime(ctx context.Context, sub *models.Subscriber, intentID string) (*StatusResult, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return nil, fmt.Errorf("%w: payment intent id is required", ErrReconciliation)
	}

	if sub.SubscriptionStatus == models.SubscriptionStatusActive && sub.LastPaymentIntentID == intentID {
		return &StatusResult{
			Success: true,
			Status:  sub.SubscriptionStatus,
			Message: "payment already reconciled",
			EndsAt:  sub.EndsAt,
		}, nil
	}

	// Only the intent issued for the pending checkout may activate it. A
	// stale intent id from an earlier checkout would otherwise be priced
	// against whatever plan the record holds now.
	if intentID != sub.LastPaymentIntentID {
		return nil, fmt.Errorf("%w: payment intent does not match the pending checkout", ErrReconciliation)
	}

	intent, err := s.gateway.GetPaymentIntent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReconciliation, err)
	}
	if intent.Status != IntentStatusSucceeded {
		// Not terminal yet; report without mutating local state.
		return &StatusResult{
			Success: false,
			Status:  intent.Status,
			Message: "payment not completed",
		}, nil
	}

	plan, err := PlanByType(sub.PlanType)
	if err != nil {
		return nil, fmt.Errorf("%w: subscriber has unknown plan %q", ErrReconciliation, sub.PlanType)
	}

	now := s.now()
	endsAt := plan.ExpiryFrom(now)
	sub.SubscriptionStatus = models.SubscriptionStatusActive
	sub.LastPaymentIntentID = intentID
	sub.LastPaidAt = &now
	sub.EndsAt = &endsAt
	if err := s.repo.SaveSubscriber(sub); err != nil {
		return nil, fmt.Errorf("persist subscriber: %w", err)
	}
	s.mirrorRestaurantPlan(sub.UserID, models.PlanStatusActive, &endsAt)

	return &StatusResult{
		Success: true,
		Status:  sub.SubscriptionStatus,
		Message: "payment confirmed",
		EndsAt:  &endsAt,
	}, nil
}

func (s *Service) confirmRecurring(ctx context.Context, sub *models.Subscriber, in ConfirmInput) (*StatusResult, error) {
	setupID := strings.TrimSpace(in.SetupIntentID)
	if setupID == "" {
		return nil, fmt.Errorf("%w: setup intent id is required", ErrReconciliation)
	}

	if sub.SubscriptionStatus == models.SubscriptionStatusActive &&
		sub.LastSetupIntentID == setupID && sub.StripeSubscriptionID != "" {
		return &StatusResult{
			Success: true,
			Status:  sub.SubscriptionStatus,
			Message: "subscription already reconciled",
			EndsAt:  sub.EndsAt,
		}, nil
	}

	if setupID != sub.LastSetupIntentID {
		return nil, fmt.Errorf("%w: setup intent does not match the pending checkout", ErrReconciliation)
	}

	intent, err := s.gateway.GetSetupIntent(ctx, setupID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReconciliation, err)
	}
	if intent.Status != IntentStatusSucceeded {
		return &StatusResult{
			Success: false,
			Status:  intent.Status,
			Message: "setup not completed",
		}, nil
	}
	if intent.PaymentMethodID == "" {
		return nil, fmt.Errorf("%w: succeeded setup intent carries no payment method", ErrReconciliation)
	}

	priceID := strings.TrimSpace(in.PriceID)
	if priceID == "" {
		plan, perr := PlanByType(sub.PlanType)
		if perr != nil {
			return nil, fmt.Errorf("%w: subscriber has unknown plan %q", ErrReconciliation, sub.PlanType)
		}
		priceID = plan.PriceID()
	}
	if priceID == "" {
		return nil, fmt.Errorf("%w: no price configured for recurring plan", ErrReconciliation)
	}

	created, err := s.gateway.CreateSubscription(ctx, sub.StripeCustomerID, priceID, intent.PaymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReconciliation, err)
	}
	if created.Status != GatewaySubscriptionActive {
		// Mirror nothing: the local record stays pending until the gateway
		// reports the subscription itself as active.
		return &StatusResult{
			Success: false,
			Status:  created.Status,
			Message: "subscription not active yet",
		}, nil
	}

	now := s.now()
	periodEnd := created.CurrentPeriodEnd
	sub.SubscriptionStatus = models.SubscriptionStatusActive
	sub.StripeSubscriptionID = created.ID
	sub.LastSetupIntentID = setupID
	sub.LastPaidAt = &now
	sub.EndsAt = &periodEnd
	if err := s.repo.SaveSubscriber(sub); err != nil {
		return nil, fmt.Errorf("persist subscriber: %w", err)
	}
	s.mirrorRestaurantPlan(sub.UserID, models.PlanStatusActive, &periodEnd)

	return &StatusResult{
		Success: true,
		Status:  sub.SubscriptionStatus,
		Message: "subscription active",
		EndsAt:  &periodEnd,
	}, nil
}

// CheckSubscription derives the current entitlement for a user. Recurring
// plans are cross-checked against live gateway subscriptions, self-healing a
// locally missed activation; one-time plans are recomputed from the last paid
// timestamp plus plan duration, not read from a stored boolean.
func (s *Service) CheckSubscription(ctx context.Context, userID uint) (*SubscriptionState, error) {
	sub, err := s.repo.GetSubscriberByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &SubscriptionState{IsSubscribed: false, Status: "none"}, nil
		}
		return nil, fmt.Errorf("load subscriber: %w", err)
	}

	if sub.PaymentType == models.PaymentTypeSubscription {
		return s.checkRecurring(ctx, sub)
	}
	return s.checkOneTime(sub)
}

func (s *Service) checkRecurring(ctx context.Context, sub *models.Subscriber) (*SubscriptionState, error) {
	live, err := s.gateway.ListActiveSubscriptions(ctx, sub.StripeCustomerID)
	if err != nil {
		// Gateway unreachable: answer from the local cache rather than
		// failing the read path.
		log.Warnf("[Billing] gateway check failed for user %d, using local state: %v", sub.UserID, err)
		return s.stateFromLocal(sub), nil
	}

	if len(live) > 0 {
		current := live[0]
		if sub.SubscriptionStatus != models.SubscriptionStatusActive || sub.StripeSubscriptionID != current.ID {
			log.Warnf("[Billing] %v: user %d has live subscription %s not reflected locally, healing",
				ErrDrift, sub.UserID, current.ID)
			periodEnd := current.CurrentPeriodEnd
			sub.SubscriptionStatus = models.SubscriptionStatusActive
			sub.StripeSubscriptionID = current.ID
			sub.EndsAt = &periodEnd
			if err := s.repo.SaveSubscriber(sub); err != nil {
				return nil, fmt.Errorf("heal subscriber: %w", err)
			}
			s.mirrorRestaurantPlan(sub.UserID, models.PlanStatusActive, &periodEnd)
		}
		return &SubscriptionState{
			IsSubscribed: true,
			Plan:         sub.PlanType,
			Status:       models.SubscriptionStatusActive,
			EndsAt:       sub.EndsAt,
		}, nil
	}

	if sub.SubscriptionStatus == models.SubscriptionStatusActive {
		log.Warnf("[Billing] %v: user %d is active locally but has no live gateway subscription, marking inactive",
			ErrDrift, sub.UserID)
		sub.SubscriptionStatus = models.SubscriptionStatusInactive
		if err := s.repo.SaveSubscriber(sub); err != nil {
			return nil, fmt.Errorf("heal subscriber: %w", err)
		}
		s.mirrorRestaurantPlan(sub.UserID, models.PlanStatusExpired, sub.EndsAt)
	}
	return s.stateFromLocal(sub), nil
}

func (s *Service) checkOneTime(sub *models.Subscriber) (*SubscriptionState, error) {
	if sub.LastPaidAt == nil {
		return s.stateFromLocal(sub), nil
	}

	plan, err := PlanByType(sub.PlanType)
	if err != nil {
		return nil, fmt.Errorf("subscriber has unknown plan %q", sub.PlanType)
	}

	expiry := plan.ExpiryFrom(*sub.LastPaidAt)
	active := s.now().Before(expiry)

	// The recomputation is authoritative; correct the stored status when it
	// disagrees.
	want := models.SubscriptionStatusInactive
	if active {
		want = models.SubscriptionStatusActive
	}
	if sub.SubscriptionStatus != want || sub.EndsAt == nil || !sub.EndsAt.Equal(expiry) {
		sub.SubscriptionStatus = want
		sub.EndsAt = &expiry
		if err := s.repo.SaveSubscriber(sub); err != nil {
			return nil, fmt.Errorf("heal subscriber: %w", err)
		}
		s.mirrorRestaurantPlan(sub.UserID, entitlements.RestaurantPlanStatus(sub, s.now()), &expiry)
	}

	return &SubscriptionState{
		IsSubscribed: active,
		Plan:         sub.PlanType,
		Status:       want,
		EndsAt:       &expiry,
	}, nil
}

func (s *Service) stateFromLocal(sub *models.Subscriber) *SubscriptionState {
	return &SubscriptionState{
		IsSubscribed: entitlements.IsEntitled(sub, s.now()),
		Plan:         sub.PlanType,
		Status:       sub.SubscriptionStatus,
		EndsAt:       sub.EndsAt,
	}
}

// mirrorRestaurantPlan pushes the derived entitlement onto the owner's
// restaurant row. The restaurant fields are denormalized display state, so a
// failure here is logged and never fails the billing operation.
func (s *Service) mirrorRestaurantPlan(userID uint, status string, expiresAt *time.Time) {
	restaurant, err := s.repo.GetRestaurantByUserID(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[Billing] could not load restaurant for user %d: %v", userID, err)
		}
		return
	}
	if err := s.repo.UpdateRestaurantPlanStatus(restaurant.ID, status, expiresAt); err != nil {
		log.Warnf("[Billing] could not mirror plan status for restaurant %d: %v", restaurant.ID, err)
	}
}
