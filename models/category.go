package models

import (
	"time"

	"gorm.io/gorm"
)

// Category menu section of one restaurant
type Category struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	RestaurantID uint           `json:"restaurant_id" gorm:"index;not null"`
	Name         string         `json:"name" gorm:"size:50;not null"`
	Sort         int            `json:"sort" gorm:"default:0;index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
	Dishes       []Dish         `json:"dishes,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Category) TableName() string {
	return "categories"
}
