package models

import (
	"time"
)

// Visit kinds
const (
	VisitKindMenu = "menu"
	VisitKindDish = "dish"
)

// VisitEvent one public page view. Rows are only ever inserted.
type VisitEvent struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurant_id" gorm:"not null;index:idx_visit_restaurant_time,priority:1"`
	DishID       *uint     `json:"dish_id,omitempty" gorm:"index"`
	Kind         string    `json:"kind" gorm:"size:20;not null"`
	VisitedAt    time.Time `json:"visited_at" gorm:"not null;index:idx_visit_restaurant_time,priority:2"`
}

func (VisitEvent) TableName() string {
	return "visit_events"
}
