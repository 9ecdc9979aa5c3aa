package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Waiter is a tracked staff member. The tracking token is the only public
// identifier; it is unguessable and unique across all restaurants.
//
// Clicks and Conversions are maintained by the tracking pipeline only: the
// click counter is incremented in the same transaction as the Click insert,
// and conversions never exceed clicks. Waiters are soft-deleted so historical
// Click rows stay attributable to them.
type Waiter struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	RestaurantID   uint           `gorm:"not null;index" json:"restaurant_id"`
	Name           string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Email          string         `gorm:"type:varchar(200);default:''" json:"email" validate:"omitempty,email,max=200"`
	Phone          string         `gorm:"type:varchar(30);default:''" json:"phone" validate:"omitempty,max=30"`
	TrackingToken  string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"tracking_token"`
	Clicks         uint           `gorm:"not null;default:0" json:"clicks"`
	Conversions    uint           `gorm:"not null;default:0" json:"conversions"`
	IsActive       bool           `gorm:"not null;default:true;index" json:"is_active"`
	TokenExpiresAt *time.Time     `gorm:"type:timestamp;default:null" json:"token_expires_at,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (w *Waiter) Validate() error {
	v := validator.New()

	return v.Struct(w)
}

// IsLinkUsable reports whether the waiter's tracking link may still be
// resolved: the waiter is active and the token has not expired.
func (w *Waiter) IsLinkUsable(now time.Time) bool {
	if !w.IsActive {
		return false
	}
	if w.TokenExpiresAt != nil && w.TokenExpiresAt.Before(now) {
		return false
	}
	return true
}
