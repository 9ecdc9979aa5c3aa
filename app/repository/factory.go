package repository

import (
	"sync"

	"github.com/AvaliaJa/AvaliaJa/internal/pkg/database"
	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

// GetRestaurantRepository returns the restaurant repository instance
func (f *Factory) GetRestaurantRepository() RestaurantRepository {
	return f.GetRepositories().Restaurant
}

// GetWaiterRepository returns the waiter repository instance
func (f *Factory) GetWaiterRepository() WaiterRepository {
	return f.GetRepositories().Waiter
}

// GetClickRepository returns the click repository instance
func (f *Factory) GetClickRepository() ClickRepository {
	return f.GetRepositories().Click
}

// GetChampionRepository returns the monthly champion repository instance
func (f *Factory) GetChampionRepository() ChampionRepository {
	return f.GetRepositories().Champion
}

// GetSubscriberRepository returns the subscriber repository instance
func (f *Factory) GetSubscriberRepository() SubscriberRepository {
	return f.GetRepositories().Subscriber
}

var globalFactory *Factory

// InitGlobalFactory initializes the global repository factory
func InitGlobalFactory(db *gorm.DB) {
	if globalFactory == nil {
		globalFactory = NewFactory(db)
	}
}

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		InitGlobalFactory(database.GetDB())
	}
	return globalFactory
}

// GetGlobalRepositories returns the global repositories instance
func GetGlobalRepositories() *Repositories {
	return GetGlobalFactory().GetRepositories()
}
