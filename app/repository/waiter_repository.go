package repository

import (
	"github.com/AvaliaJa/AvaliaJa/app/models"
	"gorm.io/gorm"
)

// waiterRepository implements the WaiterRepository interface
type waiterRepository struct {
	db *gorm.DB
}

// NewWaiterRepository creates a new waiter repository instance
func NewWaiterRepository(db *gorm.DB) WaiterRepository {
	return &waiterRepository{db: db}
}

// Create creates a new waiter in the database
func (r *waiterRepository) Create(waiter *models.Waiter) error {
	return r.db.Create(waiter).Error
}

// GetByID retrieves a waiter by their ID
func (r *waiterRepository) GetByID(id uint) (*models.Waiter, error) {
	var waiter models.Waiter
	err := r.db.First(&waiter, id).Error
	if err != nil {
		return nil, err
	}
	return &waiter, nil
}

// GetByTrackingToken retrieves a waiter by their tracking token
func (r *waiterRepository) GetByTrackingToken(token string) (*models.Waiter, error) {
	var waiter models.Waiter
	err := r.db.Where("tracking_token = ?", token).First(&waiter).Error
	if err != nil {
		return nil, err
	}
	return &waiter, nil
}

// GetByRestaurantID retrieves all waiters of a restaurant
func (r *waiterRepository) GetByRestaurantID(restaurantID uint) ([]models.Waiter, error) {
	var waiters []models.Waiter
	err := r.db.Where("restaurant_id = ?", restaurantID).Order("id ASC").Find(&waiters).Error
	return waiters, err
}

// Update updates an existing waiter
func (r *waiterRepository) Update(waiter *models.Waiter) error {
	return r.db.Save(waiter).Error
}

// Deactivate flags a waiter inactive without touching history
func (r *waiterRepository) Deactivate(id uint) error {
	return r.db.Model(&models.Waiter{}).Where("id = ?", id).
		UpdateColumn("is_active", false).Error
}

// Delete soft-deletes a waiter. Click rows referencing the waiter are kept so
// historical reporting stays attributable.
func (r *waiterRepository) Delete(id uint) error {
	return r.db.Delete(&models.Waiter{}, id).Error
}

// Count returns the total number of waiters (soft-deleted excluded)
func (r *waiterRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Waiter{}).Count(&count).Error
	return count, err
}

// TokenExists reports whether a tracking token is already taken, including by
// soft-deleted waiters, since tokens must stay unique forever.
func (r *waiterRepository) TokenExists(token string) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&models.Waiter{}).
		Where("tracking_token = ?", token).Count(&count).Error
	return count > 0, err
}
