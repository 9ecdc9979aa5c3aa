package repository

import (
	"github.com/AvaliaJa/AvaliaJa/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// championRepository implements the ChampionRepository interface
type championRepository struct {
	db *gorm.DB
}

// NewChampionRepository creates a new monthly champion repository instance
func NewChampionRepository(db *gorm.DB) ChampionRepository {
	return &championRepository{db: db}
}

// CreateIfNotExists inserts the snapshot row unless the compound unique key
// (restaurant_id, month, year) already has one. The conflict clause, not an
// application-level existence check, enforces the one-row-per-month invariant
// even when two snapshot runs race.
func (r *championRepository) CreateIfNotExists(champion *models.MonthlyChampion) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "restaurant_id"},
			{Name: "month"},
			{Name: "year"},
		},
		DoNothing: true,
	}).Create(champion)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// GetByRestaurantID retrieves all champion snapshots of a restaurant, newest first
func (r *championRepository) GetByRestaurantID(restaurantID uint) ([]models.MonthlyChampion, error) {
	var champions []models.MonthlyChampion
	err := r.db.Where("restaurant_id = ?", restaurantID).
		Order("year DESC, month DESC").Find(&champions).Error
	return champions, err
}

// GetForPeriod retrieves the champion snapshot for one month
func (r *championRepository) GetForPeriod(restaurantID uint, month, year int) (*models.MonthlyChampion, error) {
	var champion models.MonthlyChampion
	err := r.db.Where("restaurant_id = ? AND month = ? AND year = ?", restaurantID, month, year).
		First(&champion).Error
	if err != nil {
		return nil, err
	}
	return &champion, nil
}
