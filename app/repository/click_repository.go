package repository

import (
	"time"

	"github.com/AvaliaJa/AvaliaJa/app/models"
	"gorm.io/gorm"
)

// clickRepository implements the ClickRepository interface
type clickRepository struct {
	db *gorm.DB
}

// NewClickRepository creates a new click repository instance
func NewClickRepository(db *gorm.DB) ClickRepository {
	return &clickRepository{db: db}
}

// RecordClick appends the click row and increments the waiter's click counter
// in a single transaction. The row-level increment is atomic, so concurrent
// clicks on the same waiter never lose updates and the counter always equals
// the number of click rows.
func (r *clickRepository) RecordClick(click *models.Click) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(click).Error; err != nil {
			return err
		}
		return tx.Model(&models.Waiter{}).Where("id = ?", click.WaiterID).
			UpdateColumn("clicks", gorm.Expr("clicks + ?", 1)).Error
	})
}

// GetByID retrieves a click by its ID
func (r *clickRepository) GetByID(id uint) (*models.Click, error) {
	var click models.Click
	err := r.db.First(&click, id).Error
	if err != nil {
		return nil, err
	}
	return &click, nil
}

// GetByUUID retrieves a click by its public UUID
func (r *clickRepository) GetByUUID(uuid string) (*models.Click, error) {
	var click models.Click
	err := r.db.Where("uuid = ?", uuid).First(&click).Error
	if err != nil {
		return nil, err
	}
	return &click, nil
}

// MarkConverted flips the click's converted flag, increments the waiter's
// conversion counter and nudges the restaurant rating in one transaction.
//
// The guarded UPDATE (converted = 0) makes the whole operation idempotent: a
// second call for the same click affects zero rows and nothing else runs, so
// a click is never counted twice and never reverted. Because every conversion
// belongs to exactly one click row, conversions can never exceed clicks.
func (r *clickRepository) MarkConverted(clickID uint, ratingDelta float64) (bool, error) {
	applied := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Click{}).
			Where("id = ? AND converted = ?", clickID, false).
			UpdateColumn("converted", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already converted earlier; keep this call a no-op.
			return nil
		}
		applied = true

		var click models.Click
		if err := tx.First(&click, clickID).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Waiter{}).Where("id = ?", click.WaiterID).
			UpdateColumn("conversions", gorm.Expr("conversions + ?", 1)).Error; err != nil {
			return err
		}

		var restaurant models.Restaurant
		if err := tx.First(&restaurant, click.RestaurantID).Error; err != nil {
			return err
		}
		rating := restaurant.CurrentRating
		if rating <= 0 {
			rating = restaurant.InitialRating
		}
		return tx.Model(&models.Restaurant{}).Where("id = ?", click.RestaurantID).
			Updates(map[string]interface{}{
				"current_rating": models.ClampRating(rating + ratingDelta),
				"total_reviews":  gorm.Expr("total_reviews + ?", 1),
			}).Error
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// CountByWaiter counts click rows for one waiter inside [from, to)
func (r *clickRepository) CountByWaiter(waiterID uint, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Click{}).
		Where("waiter_id = ? AND created_at >= ? AND created_at < ?", waiterID, from, to).
		Count(&count).Error
	return count, err
}

// CountByRestaurant aggregates clicks and conversions per waiter inside
// [from, to). The click log, not the waiter counters, is the source of truth
// for windowed rankings.
func (r *clickRepository) CountByRestaurant(restaurantID uint, from, to time.Time) ([]WaiterClickCount, error) {
	var rows []WaiterClickCount
	err := r.db.Model(&models.Click{}).
		Select("waiter_id, COUNT(*) AS clicks, SUM(converted) AS conversions").
		Where("restaurant_id = ? AND created_at >= ? AND created_at < ?", restaurantID, from, to).
		Group("waiter_id").
		Scan(&rows).Error
	return rows, err
}

// Count returns the total number of clicks
func (r *clickRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Click{}).Count(&count).Error
	return count, err
}

// CountConverted returns the total number of converted clicks
func (r *clickRepository) CountConverted() (int64, error) {
	var count int64
	err := r.db.Model(&models.Click{}).Where("converted = ?", true).Count(&count).Error
	return count, err
}
