package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Dish item of a category. Ownership is inherited from the category.
type Dish struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	CategoryID  uint            `json:"category_id" gorm:"index;not null"`
	Name        string          `json:"name" gorm:"size:100;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(8,2);not null"`
	Image       string          `json:"image,omitempty" gorm:"size:255;default:''"` // asset path under dishes/
	Available   bool            `json:"available" gorm:"not null"`
	Sort        int             `json:"sort" gorm:"default:0"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (Dish) TableName() string {
	return "dishes"
}
