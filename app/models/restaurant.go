package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	PlanStatusTrial    = "trial"
	PlanStatusActive   = "active"
	PlanStatusExpired  = "expired"
	PlanStatusCanceled = "canceled"
)

const (
	RatingMin = 1.0
	RatingMax = 5.0
)

// Restaurant is the tenant entity. CurrentRating is only ever nudged by the
// conversion pipeline and stays within [RatingMin, RatingMax].
type Restaurant struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	Name            string         `gorm:"type:varchar(200);not null" json:"name" validate:"required,min=2,max=200"`
	GoogleReviewURL string         `gorm:"type:varchar(500);not null" json:"google_review_url" validate:"required,url,max=500"`
	InitialRating   float64        `gorm:"type:decimal(3,2);default:0" json:"initial_rating"`
	CurrentRating   float64        `gorm:"type:decimal(3,2);default:0" json:"current_rating"`
	TotalReviews    int            `gorm:"default:0" json:"total_reviews"`
	FeedbackSummary string         `gorm:"type:text" json:"feedback_summary"`
	PlanStatus      string         `gorm:"type:varchar(20);not null;default:'trial'" json:"plan_status" validate:"oneof=trial active expired canceled"`
	PlanExpiresAt   *time.Time     `gorm:"type:timestamp;default:null" json:"plan_expires_at,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Restaurant) Validate() error {
	v := validator.New()

	return v.Struct(r)
}

// ClampRating forces a rating value into the allowed review scale.
func ClampRating(rating float64) float64 {
	if rating < RatingMin {
		return RatingMin
	}
	if rating > RatingMax {
		return RatingMax
	}
	return rating
}
