package api

import (
	"time"

	"menuqr/models"
	"menuqr/service"
)

// RestaurantView restaurant as shown to its owner
type RestaurantView struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name" example:"La Tasca"`
	Slug        string    `json:"slug" example:"la-tasca"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	LogoURL     string    `json:"logo_url,omitempty"`
	QRImageURL  string    `json:"qr_image_url,omitempty"`
	PublicURL   string    `json:"public_url" example:"http://localhost:8080/menu/la-tasca"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newRestaurantView(rest *models.Restaurant, reg *service.Registry) RestaurantView {
	assets := reg.Assets()
	return RestaurantView{
		ID:          rest.ID,
		Name:        rest.Name,
		Slug:        rest.Slug,
		Description: rest.Description,
		Active:      rest.Active,
		LogoURL:     assets.URL(rest.Logo),
		QRImageURL:  assets.URL(rest.QRImage),
		PublicURL:   reg.PublicURL(rest.Slug),
		CreatedAt:   rest.CreatedAt,
		UpdatedAt:   rest.UpdatedAt,
	}
}

// DishView dish with its price fixed to two decimals
type DishView struct {
	ID          uint   `json:"id"`
	CategoryID  uint   `json:"category_id"`
	Name        string `json:"name" example:"Paella"`
	Description string `json:"description"`
	Price       string `json:"price" example:"12.50"`
	ImageURL    string `json:"image_url,omitempty"`
	Available   bool   `json:"available"`
	Sort        int    `json:"sort"`
}

func newDishView(d *models.Dish, assets *service.AssetStore) DishView {
	return DishView{
		ID:          d.ID,
		CategoryID:  d.CategoryID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price.StringFixed(models.PriceDecimalPlaces),
		ImageURL:    assets.URL(d.Image),
		Available:   d.Available,
		Sort:        d.Sort,
	}
}

func newDishViews(dishes []models.Dish, assets *service.AssetStore) []DishView {
	out := make([]DishView, len(dishes))
	for i := range dishes {
		out[i] = newDishView(&dishes[i], assets)
	}
	return out
}

// CategoryView category with its dishes
type CategoryView struct {
	ID     uint       `json:"id"`
	Name   string     `json:"name" example:"Starters"`
	Sort   int        `json:"sort"`
	Dishes []DishView `json:"dishes"`
}

func newCategoryView(cat *models.Category, assets *service.AssetStore) CategoryView {
	return CategoryView{
		ID:     cat.ID,
		Name:   cat.Name,
		Sort:   cat.Sort,
		Dishes: newDishViews(cat.Dishes, assets),
	}
}

func newCategoryViews(cats []models.Category, assets *service.AssetStore) []CategoryView {
	out := make([]CategoryView, len(cats))
	for i := range cats {
		out[i] = newCategoryView(&cats[i], assets)
	}
	return out
}

// PublicMenuView what a diner sees after scanning the QR code
type PublicMenuView struct {
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	LogoURL     string         `json:"logo_url,omitempty"`
	Active      bool           `json:"active"`
	Categories  []CategoryView `json:"categories"`
}
