package models

import "time"

// Click is an immutable append-only record of a tracking link hit. Rows are
// never updated except for the one-way Converted flip; once converted a click
// is never reverted.
type Click struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"uuid"`
	WaiterID     uint      `gorm:"not null;index:idx_clicks_waiter_created,priority:1" json:"waiter_id"`
	RestaurantID uint      `gorm:"not null;index:idx_clicks_restaurant_created,priority:1" json:"restaurant_id"`
	Converted    bool      `gorm:"not null;default:false;index" json:"converted"`
	IP           string    `gorm:"type:varchar(45);default:''" json:"-"`
	UserAgent    string    `gorm:"type:varchar(500);default:''" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_clicks_waiter_created,priority:2;index:idx_clicks_restaurant_created,priority:2" json:"created_at"`
}
