package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/AvaliaJa/AvaliaJa/internal/pkg/billing"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/usercontext"
)

var billingService *billing.Service

// SetBillingService wires the billing service used by the API handlers.
// Called once during router setup.
func SetBillingService(svc *billing.Service) {
	billingService = svc
}

type createIntentRequest struct {
	PlanType string `json:"plan_type"`
}

type confirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
	SetupIntentID   string `json:"setup_intent_id"`
	PaymentType     string `json:"payment_type"`
	PriceID         string `json:"price_id"`
}

// HandleBillingCreateIntent creates a payment or setup intent for the chosen
// plan. The local subscriber record is marked pending before the client
// secret leaves the server.
func HandleBillingCreateIntent(c *fiber.Ctx) error {
	var req createIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	userID := usercontext.GetUserID(c)
	result, err := billingService.CreateIntent(c.Context(), userID, req.PlanType)
	if err != nil {
		return billingError(c, err)
	}

	return c.JSON(result)
}

// HandleBillingConfirm reconciles a client-reported payment result against
// the gateway. The client's success claim is never trusted; the intent status
// is always re-fetched.
func HandleBillingConfirm(c *fiber.Ctx) error {
	var req confirmPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	userID := usercontext.GetUserID(c)
	result, err := billingService.ConfirmPayment(c.Context(), userID, billing.ConfirmInput{
		PaymentIntentID: req.PaymentIntentID,
		SetupIntentID:   req.SetupIntentID,
		PaymentType:     req.PaymentType,
		PriceID:         req.PriceID,
	})
	if err != nil {
		return billingError(c, err)
	}

	return c.JSON(result)
}

// HandleBillingSubscription returns the caller's current subscription state,
// reconciled against the gateway.
func HandleBillingSubscription(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	state, err := billingService.CheckSubscription(c.Context(), userID)
	if err != nil {
		return billingError(c, err)
	}

	return c.JSON(state)
}

// billingError maps billing sentinel errors to stable API error codes.
func billingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, billing.ErrInvalidPlan):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "invalid_plan", "message": "Unknown plan type"})
	case errors.Is(err, billing.ErrAuth):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Authentication required"})
	case errors.Is(err, billing.ErrGateway):
		log.Errorf("[Billing] gateway error: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "gateway_error", "message": "Payment provider is unavailable"})
	case errors.Is(err, billing.ErrReconciliation):
		log.Errorf("[Billing] reconciliation error: %v", err)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "reconciliation_failed", "message": "Payment state could not be reconciled"})
	default:
		log.Errorf("[Billing] unexpected error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Something went wrong"})
	}
}
