package repository

import (
	"time"

	"github.com/AvaliaJa/AvaliaJa/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Count() (int64, error)
}

// RestaurantRepository defines the interface for restaurant-related database operations
type RestaurantRepository interface {
	Create(restaurant *models.Restaurant) error
	GetByID(id uint) (*models.Restaurant, error)
	GetByUserID(userID uint) (*models.Restaurant, error)
	Update(restaurant *models.Restaurant) error
	UpdatePlanStatus(id uint, status string, expiresAt *time.Time) error
}

// WaiterRepository defines the interface for waiter-related database operations
type WaiterRepository interface {
	Create(waiter *models.Waiter) error
	GetByID(id uint) (*models.Waiter, error)
	GetByTrackingToken(token string) (*models.Waiter, error)
	GetByRestaurantID(restaurantID uint) ([]models.Waiter, error)
	Update(waiter *models.Waiter) error
	Deactivate(id uint) error
	Delete(id uint) error
	Count() (int64, error)
	TokenExists(token string) (bool, error)
}

// ClickRepository defines the interface for click log operations. The click
// log is append-only; the only permitted mutation is the one-way converted
// flip done by MarkConverted.
type ClickRepository interface {
	// RecordClick inserts the click row and increments the owning waiter's
	// click counter in one transaction so counter and log cannot drift.
	RecordClick(click *models.Click) error
	GetByID(id uint) (*models.Click, error)
	GetByUUID(uuid string) (*models.Click, error)
	// MarkConverted flips converted from false to true, increments the
	// waiter's conversion counter and nudges the restaurant rating, all in
	// one transaction. Calling it on an already-converted click is a no-op.
	MarkConverted(clickID uint, ratingDelta float64) (bool, error)
	CountByWaiter(waiterID uint, from, to time.Time) (int64, error)
	CountByRestaurant(restaurantID uint, from, to time.Time) ([]WaiterClickCount, error)
	Count() (int64, error)
	CountConverted() (int64, error)
}

// ChampionRepository defines the interface for monthly champion snapshots
type ChampionRepository interface {
	// CreateIfNotExists inserts the snapshot unless one already exists for
	// the same (restaurant, month, year). Returns whether a row was created.
	CreateIfNotExists(champion *models.MonthlyChampion) (bool, error)
	GetByRestaurantID(restaurantID uint) ([]models.MonthlyChampion, error)
	GetForPeriod(restaurantID uint, month, year int) (*models.MonthlyChampion, error)
}

// SubscriberRepository defines the interface for local billing records
type SubscriberRepository interface {
	GetByUserID(userID uint) (*models.Subscriber, error)
	// Upsert creates or updates the subscriber keyed by user id.
	Upsert(sub *models.Subscriber) error
	Save(sub *models.Subscriber) error
}

// WaiterClickCount is one aggregation row of the click log: clicks and
// conversions per waiter inside a time window.
type WaiterClickCount struct {
	WaiterID    uint
	Clicks      int64
	Conversions int64
}

// Repositories struct holds all repository instances
type Repositories struct {
	User       UserRepository
	Restaurant RestaurantRepository
	Waiter     WaiterRepository
	Click      ClickRepository
	Champion   ChampionRepository
	Subscriber SubscriberRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Restaurant: NewRestaurantRepository(db),
		Waiter:     NewWaiterRepository(db),
		Click:      NewClickRepository(db),
		Champion:   NewChampionRepository(db),
		Subscriber: NewSubscriberRepository(db),
	}
}
