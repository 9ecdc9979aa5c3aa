package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/AvaliaJa/AvaliaJa/app/models"
	"github.com/AvaliaJa/AvaliaJa/app/repository"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/tracking"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/usercontext"
)

type waiterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// maxTokenAttempts bounds the retry loop for the astronomically unlikely
// case of a token collision.
const maxTokenAttempts = 5

// HandleWaiterList returns all waiters of the caller's restaurant.
func HandleWaiterList(c *fiber.Ctx) error {
	restaurant, err := ownerRestaurant(c)
	if err != nil {
		return restaurantError(c, err)
	}

	waiters, err := repository.GetGlobalFactory().GetWaiterRepository().GetByRestaurantID(restaurant.ID)
	if err != nil {
		log.Errorf("[Waiter] failed to list waiters for restaurant %d: %v", restaurant.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load waiters"})
	}

	return c.JSON(fiber.Map{"waiters": waiters})
}

// HandleWaiterCreate registers a waiter under the caller's restaurant and
// issues a fresh tracking token.
func HandleWaiterCreate(c *fiber.Ctx) error {
	restaurant, err := ownerRestaurant(c)
	if err != nil {
		return restaurantError(c, err)
	}

	var req waiterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	token, err := uniqueTrackingToken()
	if err != nil {
		log.Errorf("[Waiter] token generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to generate tracking token"})
	}

	waiter := &models.Waiter{
		RestaurantID:  restaurant.ID,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		TrackingToken: token,
		IsActive:      true,
	}

	if err := waiter.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	if err := repository.GetGlobalFactory().GetWaiterRepository().Create(waiter); err != nil {
		log.Errorf("[Waiter] failed to create waiter: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create waiter"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"waiter": waiter})
}

// HandleWaiterUpdate changes a waiter's profile fields or active flag. The
// tracking token itself is immutable.
func HandleWaiterUpdate(c *fiber.Ctx) error {
	waiter, err := ownerWaiter(c)
	if err != nil {
		return restaurantError(c, err)
	}

	var req struct {
		Name     *string `json:"name"`
		Email    *string `json:"email"`
		Phone    *string `json:"phone"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	if req.Name != nil {
		waiter.Name = *req.Name
	}
	if req.Email != nil {
		waiter.Email = *req.Email
	}
	if req.Phone != nil {
		waiter.Phone = *req.Phone
	}
	if req.IsActive != nil {
		waiter.IsActive = *req.IsActive
	}

	if err := waiter.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	if err := repository.GetGlobalFactory().GetWaiterRepository().Update(waiter); err != nil {
		log.Errorf("[Waiter] failed to update waiter %d: %v", waiter.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update waiter"})
	}

	return c.JSON(fiber.Map{"waiter": waiter})
}

// HandleWaiterDelete soft-deletes a waiter. The click log keeps its rows so
// historical rankings and champion snapshots stay intact, and the token is
// never reissued to anyone else.
func HandleWaiterDelete(c *fiber.Ctx) error {
	waiter, err := ownerWaiter(c)
	if err != nil {
		return restaurantError(c, err)
	}

	if err := repository.GetGlobalFactory().GetWaiterRepository().Delete(waiter.ID); err != nil {
		log.Errorf("[Waiter] failed to delete waiter %d: %v", waiter.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete waiter"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// uniqueTrackingToken generates a token and verifies it against all waiters
// ever created, soft-deleted ones included.
func uniqueTrackingToken() (string, error) {
	waiterRepo := repository.GetGlobalFactory().GetWaiterRepository()

	for i := 0; i < maxTokenAttempts; i++ {
		token, err := tracking.GenerateToken(tracking.TokenLength)
		if err != nil {
			return "", err
		}

		exists, err := waiterRepo.TokenExists(token)
		if err != nil {
			return "", err
		}
		if !exists {
			return token, nil
		}
	}

	return "", fmt.Errorf("could not generate a unique tracking token after %d attempts", maxTokenAttempts)
}

// ownerRestaurant loads the restaurant owned by the authenticated caller.
func ownerRestaurant(c *fiber.Ctx) (*models.Restaurant, error) {
	userID := usercontext.GetUserID(c)

	restaurant, err := repository.GetGlobalFactory().GetRestaurantRepository().GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	return restaurant, nil
}

// ownerWaiter loads a waiter by route param and verifies it belongs to the
// caller's restaurant. Foreign waiters are reported as not found.
func ownerWaiter(c *fiber.Ctx) (*models.Waiter, error) {
	restaurant, err := ownerRestaurant(c)
	if err != nil {
		return nil, err
	}

	waiterID, err := c.ParamsInt("id")
	if err != nil || waiterID <= 0 {
		return nil, gorm.ErrRecordNotFound
	}

	waiter, err := repository.GetGlobalFactory().GetWaiterRepository().GetByID(uint(waiterID))
	if err != nil {
		return nil, err
	}
	if waiter.RestaurantID != restaurant.ID {
		return nil, gorm.ErrRecordNotFound
	}

	return waiter, nil
}

// routeRestaurant resolves the :id route param and verifies the restaurant
// belongs to the caller. Foreign restaurants look like they do not exist.
func routeRestaurant(c *fiber.Ctx) (*models.Restaurant, error) {
	restaurant, err := ownerRestaurant(c)
	if err != nil {
		return nil, err
	}

	id, err := c.ParamsInt("id")
	if err != nil || uint(id) != restaurant.ID {
		return nil, gorm.ErrRecordNotFound
	}

	return restaurant, nil
}

// restaurantError maps lookup failures to API responses.
func restaurantError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Not found"})
	}
	log.Errorf("[Waiter] lookup failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Something went wrong"})
}
