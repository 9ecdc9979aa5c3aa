package repository

import (
	"github.com/AvaliaJa/AvaliaJa/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subscriberRepository implements the SubscriberRepository interface
type subscriberRepository struct {
	db *gorm.DB
}

// NewSubscriberRepository creates a new subscriber repository instance
func NewSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &subscriberRepository{db: db}
}

// GetByUserID retrieves the billing record for a user
func (r *subscriberRepository) GetByUserID(userID uint) (*models.Subscriber, error) {
	var sub models.Subscriber
	err := r.db.Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Upsert creates or updates the subscriber keyed by user id
func (r *subscriberRepository) Upsert(sub *models.Subscriber) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"stripe_customer_id",
			"plan_type",
			"payment_type",
			"subscription_status",
			"stripe_subscription_id",
			"last_payment_intent_id",
			"last_setup_intent_id",
			"last_paid_at",
			"ends_at",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("user_id = ?", sub.UserID).First(sub).Error
}

// Save persists changes to an existing subscriber
func (r *subscriberRepository) Save(sub *models.Subscriber) error {
	return r.db.Save(sub).Error
}
