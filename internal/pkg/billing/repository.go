package billing

import (
	"time"

	"github.com/AvaliaJa/AvaliaJa/app/models"
	apprepo "github.com/AvaliaJa/AvaliaJa/app/repository"
	"gorm.io/gorm"
)

// Repository provides the DB operations used by the billing service.
type Repository interface {
	GetUserByID(id uint) (*models.User, error)
	GetSubscriberByUserID(userID uint) (*models.Subscriber, error)
	UpsertSubscriber(sub *models.Subscriber) error
	SaveSubscriber(sub *models.Subscriber) error
	GetRestaurantByUserID(userID uint) (*models.Restaurant, error)
	UpdateRestaurantPlanStatus(restaurantID uint, status string, expiresAt *time.Time) error
}

type gormRepository struct {
	repos *apprepo.Repositories
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{repos: apprepo.NewRepositories(db)}
}

func (r *gormRepository) GetUserByID(id uint) (*models.User, error) {
	return r.repos.User.GetByID(id)
}

func (r *gormRepository) GetSubscriberByUserID(userID uint) (*models.Subscriber, error) {
	return r.repos.Subscriber.GetByUserID(userID)
}

func (r *gormRepository) UpsertSubscriber(sub *models.Subscriber) error {
	return r.repos.Subscriber.Upsert(sub)
}

func (r *gormRepository) SaveSubscriber(sub *models.Subscriber) error {
	return r.repos.Subscriber.Save(sub)
}

func (r *gormRepository) GetRestaurantByUserID(userID uint) (*models.Restaurant, error) {
	return r.repos.Restaurant.GetByUserID(userID)
}

func (r *gormRepository) UpdateRestaurantPlanStatus(restaurantID uint, status string, expiresAt *time.Time) error {
	return r.repos.Restaurant.UpdatePlanStatus(restaurantID, status, expiresAt)
}
