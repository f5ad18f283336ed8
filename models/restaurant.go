package models

import (
	"time"
)

// SlugMaxLength column size of restaurants.slug
const SlugMaxLength = 50

// Restaurant one tenant. Owned by exactly one user; the slug is its public identifier.
type Restaurant struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	Name        string     `json:"name" gorm:"size:100;not null"`
	Slug        string     `json:"slug" gorm:"size:50;uniqueIndex;not null"`
	Logo        string     `json:"logo,omitempty" gorm:"size:255;default:''"` // asset path under logos/
	Description string     `json:"description,omitempty" gorm:"type:text"`
	Active      bool       `json:"active" gorm:"not null"`
	QRImage     string     `json:"qr_image,omitempty" gorm:"size:255;default:''"` // asset path under qr/
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Categories  []Category `json:"categories,omitempty" gorm:"foreignKey:RestaurantID"`
}

func (Restaurant) TableName() string {
	return "restaurants"
}
