package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/AvaliaJa/AvaliaJa/app/repository"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/leaderboard"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/statistics"
)

var leaderboardService *leaderboard.Service

// SetLeaderboardService wires the leaderboard service used by the API
// handlers. Called once during router setup.
func SetLeaderboardService(svc *leaderboard.Service) {
	leaderboardService = svc
}

// leaderboardLocation pins the competition month boundary. All restaurants
// compete on UTC months.
var leaderboardLocation = time.UTC

// HandleLeaderboard returns the current month's ranking computed from the
// click log, together with the remaining days of the competition window.
// Reading the leaderboard also lazily snapshots the previous month's champion
// if that has not happened yet.
func HandleLeaderboard(c *fiber.Ctx) error {
	restaurant, err := routeRestaurant(c)
	if err != nil {
		return restaurantError(c, err)
	}

	if err := leaderboardService.EnsurePreviousMonthSnapshot(c.Context(), restaurant.ID); err != nil {
		// The current ranking is still servable without the snapshot.
		log.Warnf("[Leaderboard] champion snapshot failed for restaurant %d: %v", restaurant.ID, err)
	}

	entries, err := leaderboardService.Ranking(c.Context(), restaurant.ID)
	if err != nil {
		log.Errorf("[Leaderboard] ranking failed for restaurant %d: %v", restaurant.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to compute ranking"})
	}

	return c.JSON(fiber.Map{
		"ranking":        entries,
		"days_remaining": leaderboard.DaysUntilEndOfMonth(time.Now(), leaderboardLocation),
	})
}

// HandleChampionList returns all recorded monthly champions of the caller's
// restaurant, newest first.
func HandleChampionList(c *fiber.Ctx) error {
	restaurant, err := routeRestaurant(c)
	if err != nil {
		return restaurantError(c, err)
	}

	if err := leaderboardService.EnsurePreviousMonthSnapshot(c.Context(), restaurant.ID); err != nil {
		log.Warnf("[Leaderboard] champion snapshot failed for restaurant %d: %v", restaurant.ID, err)
	}

	champions, err := repository.GetGlobalFactory().GetChampionRepository().GetByRestaurantID(restaurant.ID)
	if err != nil {
		log.Errorf("[Leaderboard] failed to list champions for restaurant %d: %v", restaurant.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load champions"})
	}

	return c.JSON(fiber.Map{"champions": champions})
}

// HandleRestaurantStats returns the cached dashboard numbers for the caller's
// restaurant.
func HandleRestaurantStats(c *fiber.Ctx) error {
	restaurant, err := ownerRestaurant(c)
	if err != nil {
		return restaurantError(c, err)
	}

	return c.JSON(fiber.Map{
		"restaurant": restaurant,
		"stats":      statistics.GetStatistics(restaurant.ID),
	})
}
