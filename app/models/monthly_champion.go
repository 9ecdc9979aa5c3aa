package models

import "time"

// MonthlyChampion is an immutable snapshot of a restaurant's leaderboard
// winner for one calendar month. The compound unique index makes the snapshot
// routine idempotent: only one row can ever exist per (restaurant, month, year)
// no matter how often it runs.
type MonthlyChampion struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;index:ux_monthly_champions_period,unique,priority:1" json:"restaurant_id"`
	WaiterID     uint      `gorm:"not null;index" json:"waiter_id"`
	WaiterName   string    `gorm:"type:varchar(150);not null" json:"waiter_name"`
	Month        int       `gorm:"not null;index:ux_monthly_champions_period,unique,priority:2" json:"month"`
	Year         int       `gorm:"not null;index:ux_monthly_champions_period,unique,priority:3" json:"year"`
	Clicks       uint      `gorm:"not null;default:0" json:"clicks"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
