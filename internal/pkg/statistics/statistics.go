package statistics

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/AvaliaJa/AvaliaJa/app/models"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/cache"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/database"
)

const (
	CacheKeyClicksTotal      = "statistics:restaurant:%d:clicks:total"
	CacheKeyClicksDaily      = "statistics:restaurant:%d:clicks:daily:%s" // date YYYY-MM-DD
	CacheKeyConversionsTotal = "statistics:restaurant:%d:conversions:total"
	CacheKeyWaitersActive    = "statistics:restaurant:%d:waiters:active"
	CacheExpiration          = 30 * time.Minute
)

// StatisticsData holds the aggregate numbers shown on the restaurant dashboard.
type StatisticsData struct {
	TotalClicks      int     `json:"total_clicks"`
	TodayClicks      int     `json:"today_clicks"`
	TotalConversions int     `json:"total_conversions"`
	ActiveWaiters    int     `json:"active_waiters"`
	ConversionRate   float64 `json:"conversion_rate"`
}

var (
	lastCacheUpdate     = map[uint]time.Time{}
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// statisticsLocation pins the daily window. Key and query bounds must be
// derived from the same location or the window drifts by the server's offset.
var statisticsLocation = time.UTC

func dayBounds(now time.Time) (start, end time.Time) {
	now = now.In(statisticsLocation)
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, statisticsLocation)
	return start, start.Add(24 * time.Hour)
}

// ShouldUpdateCache reports whether the cached numbers for a restaurant are
// older than the refresh interval.
func ShouldUpdateCache(restaurantID uint) bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate[restaurantID]) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the cached numbers when they are stale.
func UpdateCacheIfNeeded(restaurantID uint) {
	if ShouldUpdateCache(restaurantID) {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateStatisticsCache(restaurantID); err != nil {
			log.Errorf("failed to refresh statistics cache for restaurant %d: %v", restaurantID, err)
		} else {
			lastCacheUpdate[restaurantID] = time.Now()
		}
	}
}

// UpdateStatisticsCache recomputes all dashboard numbers for one restaurant
// from the database and writes them to the cache.
func UpdateStatisticsCache(restaurantID uint) error {
	db := database.GetDB()

	var totalClicks int64
	if err := db.Model(&models.Click{}).Where("restaurant_id = ?", restaurantID).Count(&totalClicks).Error; err != nil {
		log.Errorf("error counting clicks for restaurant %d: %v", restaurantID, err)
		return err
	}

	var todayClicks int64
	todayStart, todayEnd := dayBounds(time.Now())
	today := todayStart.Format("2006-01-02")

	if err := db.Model(&models.Click{}).
		Where("restaurant_id = ? AND created_at BETWEEN ? AND ?", restaurantID, todayStart, todayEnd).
		Count(&todayClicks).Error; err != nil {
		log.Errorf("error counting today's clicks for restaurant %d: %v", restaurantID, err)
		return err
	}

	var totalConversions int64
	if err := db.Model(&models.Click{}).
		Where("restaurant_id = ? AND converted = ?", restaurantID, true).
		Count(&totalConversions).Error; err != nil {
		log.Errorf("error counting conversions for restaurant %d: %v", restaurantID, err)
		return err
	}

	var activeWaiters int64
	if err := db.Model(&models.Waiter{}).
		Where("restaurant_id = ? AND is_active = ?", restaurantID, true).
		Count(&activeWaiters).Error; err != nil {
		log.Errorf("error counting active waiters for restaurant %d: %v", restaurantID, err)
		return err
	}

	if err := cache.Set(fmt.Sprintf(CacheKeyClicksTotal, restaurantID), strconv.FormatInt(totalClicks, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(fmt.Sprintf(CacheKeyClicksDaily, restaurantID, today), strconv.FormatInt(todayClicks, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(fmt.Sprintf(CacheKeyConversionsTotal, restaurantID), strconv.FormatInt(totalConversions, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(fmt.Sprintf(CacheKeyWaitersActive, restaurantID), strconv.FormatInt(activeWaiters, 10), CacheExpiration); err != nil {
		return err
	}

	return nil
}

// GetStatistics returns the dashboard numbers for a restaurant, served from
// cache where possible.
func GetStatistics(restaurantID uint) StatisticsData {
	UpdateCacheIfNeeded(restaurantID)

	todayStart, _ := dayBounds(time.Now())
	data := StatisticsData{
		TotalClicks:      getCachedCount(fmt.Sprintf(CacheKeyClicksTotal, restaurantID)),
		TodayClicks:      getCachedCount(fmt.Sprintf(CacheKeyClicksDaily, restaurantID, todayStart.Format("2006-01-02"))),
		TotalConversions: getCachedCount(fmt.Sprintf(CacheKeyConversionsTotal, restaurantID)),
		ActiveWaiters:    getCachedCount(fmt.Sprintf(CacheKeyWaitersActive, restaurantID)),
	}

	if data.TotalClicks > 0 {
		data.ConversionRate = float64(data.TotalConversions) / float64(data.TotalClicks)
	}

	return data
}

// ResetCacheUpdateTimer forces the next read to refresh from the database.
func ResetCacheUpdateTimer(restaurantID uint) {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	delete(lastCacheUpdate, restaurantID)
}

func getCachedCount(key string) int {
	val, err := cache.Get(key)
	if err != nil {
		return 0
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}
