package repository

import (
	"time"

	"github.com/AvaliaJa/AvaliaJa/app/models"
	"gorm.io/gorm"
)

// restaurantRepository implements the RestaurantRepository interface
type restaurantRepository struct {
	db *gorm.DB
}

// NewRestaurantRepository creates a new restaurant repository instance
func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

// Create creates a new restaurant in the database
func (r *restaurantRepository) Create(restaurant *models.Restaurant) error {
	return r.db.Create(restaurant).Error
}

// GetByID retrieves a restaurant by its ID
func (r *restaurantRepository) GetByID(id uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.db.First(&restaurant, id).Error
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// GetByUserID retrieves the restaurant owned by the given user
func (r *restaurantRepository) GetByUserID(userID uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.db.Where("user_id = ?", userID).First(&restaurant).Error
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// Update updates an existing restaurant
func (r *restaurantRepository) Update(restaurant *models.Restaurant) error {
	return r.db.Save(restaurant).Error
}

// UpdatePlanStatus sets the plan status and expiry for a restaurant
func (r *restaurantRepository) UpdatePlanStatus(id uint, status string, expiresAt *time.Time) error {
	return r.db.Model(&models.Restaurant{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"plan_status":     status,
			"plan_expires_at": expiresAt,
		}).Error
}
