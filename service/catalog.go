package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"menuqr/models"

	"gorm.io/gorm"
)

// Catalog category and dish operations. Every method takes the caller's restaurant id
// and only sees rows of that restaurant; rows of other restaurants are reported as
// ErrNotFound.
type Catalog struct {
	db *gorm.DB
}

// NewCatalog creates a catalog bound to db
func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// CategoryInput category fields; nil leaves a field unchanged on update
type CategoryInput struct {
	Name *string
	Sort *int
}

// DishInput dish fields; nil leaves a field unchanged on update
type DishInput struct {
	CategoryID  *uint
	Name        *string
	Description *string
	Price       *string
	Available   *bool
	Sort        *int
}

func dishesOrdered(db *gorm.DB) *gorm.DB {
	return db.Order("sort ASC, id ASC")
}

func availableDishes(db *gorm.DB) *gorm.DB {
	return db.Where("available = ?", true).Order("sort ASC, id ASC")
}

// scopedCategories restricts a query to categories owned by restaurantID
func (s *Catalog) scopedCategories(ctx context.Context, restaurantID uint) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Category{}).Where("restaurant_id = ?", restaurantID)
}

// scopedDishes restricts a query to dishes whose category is owned by restaurantID
func (s *Catalog) scopedDishes(ctx context.Context, restaurantID uint) *gorm.DB {
	owned := s.db.WithContext(ctx).Model(&models.Category{}).
		Select("id").
		Where("restaurant_id = ?", restaurantID)
	return s.db.WithContext(ctx).Model(&models.Dish{}).Where("category_id IN (?)", owned)
}

// ListCategories categories with all their dishes
func (s *Catalog) ListCategories(ctx context.Context, restaurantID uint) ([]models.Category, error) {
	var list []models.Category
	err := s.scopedCategories(ctx, restaurantID).
		Preload("Dishes", dishesOrdered).
		Order("sort ASC, id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return list, nil
}

// GetCategory one category with its dishes
func (s *Catalog) GetCategory(ctx context.Context, restaurantID, id uint) (*models.Category, error) {
	var cat models.Category
	err := s.scopedCategories(ctx, restaurantID).
		Preload("Dishes", dishesOrdered).
		Where("id = ?", id).
		First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return &cat, nil
}

// CreateCategory creates a category owned by restaurantID
func (s *Catalog) CreateCategory(ctx context.Context, restaurantID uint, in CategoryInput) (*models.Category, error) {
	if in.Name == nil {
		return nil, NewValidationError("name", "name is required")
	}
	name, err := normalizeName("name", *in.Name, 50)
	if err != nil {
		return nil, err
	}
	cat := models.Category{RestaurantID: restaurantID, Name: name}
	if in.Sort != nil {
		cat.Sort = *in.Sort
	}
	if err := s.db.WithContext(ctx).Create(&cat).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &cat, nil
}

// UpdateCategory updates a category inside the scope
func (s *Catalog) UpdateCategory(ctx context.Context, restaurantID, id uint, in CategoryInput) (*models.Category, error) {
	cat, err := s.GetCategory(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Name != nil {
		name, err := normalizeName("name", *in.Name, 50)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if in.Sort != nil {
		updates["sort"] = *in.Sort
	}
	if len(updates) == 0 {
		return cat, nil
	}
	if err := s.db.WithContext(ctx).Model(&models.Category{ID: cat.ID}).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}
	return s.GetCategory(ctx, restaurantID, id)
}

// DeleteCategory soft deletes a category and its dishes. It returns the image paths of
// the removed dishes so the caller can drop the assets.
func (s *Catalog) DeleteCategory(ctx context.Context, restaurantID, id uint) ([]string, error) {
	cat, err := s.GetCategory(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}
	var images []string
	for _, d := range cat.Dishes {
		if d.Image != "" {
			images = append(images, d.Image)
		}
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", cat.ID).Delete(&models.Dish{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, cat.ID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("delete category %d: %w", id, err)
	}
	return images, nil
}

// ListDishes dishes of the restaurant, optionally only of categoryID
func (s *Catalog) ListDishes(ctx context.Context, restaurantID, categoryID uint) ([]models.Dish, error) {
	q := s.scopedDishes(ctx, restaurantID)
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	var list []models.Dish
	if err := q.Order("category_id ASC, sort ASC, id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	return list, nil
}

// GetDish one dish inside the scope
func (s *Catalog) GetDish(ctx context.Context, restaurantID, id uint) (*models.Dish, error) {
	var dish models.Dish
	err := s.scopedDishes(ctx, restaurantID).Where("id = ?", id).First(&dish).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dish %d: %w", id, err)
	}
	return &dish, nil
}

// CreateDish creates a dish in a category of the restaurant
func (s *Catalog) CreateDish(ctx context.Context, restaurantID uint, in DishInput) (*models.Dish, error) {
	verr := &ValidationError{}
	if in.CategoryID == nil || *in.CategoryID == 0 {
		verr.Add("category_id", "category_id is required")
	}
	if in.Name == nil {
		verr.Add("name", "name is required")
	}
	if in.Price == nil {
		verr.Add("price", "price is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	dish := models.Dish{Available: true}
	if err := applyDishInput(&dish, in); err != nil {
		return nil, err
	}
	if _, err := s.GetCategory(ctx, restaurantID, dish.CategoryID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&dish).Error; err != nil {
		return nil, fmt.Errorf("create dish: %w", err)
	}
	return &dish, nil
}

// UpdateDish updates a dish inside the scope. Moving it requires the target category to
// be in the scope as well.
func (s *Catalog) UpdateDish(ctx context.Context, restaurantID, id uint, in DishInput) (*models.Dish, error) {
	dish, err := s.GetDish(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}
	if err := applyDishInput(dish, in); err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		if _, err := s.GetCategory(ctx, restaurantID, dish.CategoryID); err != nil {
			return nil, err
		}
	}
	err = s.db.WithContext(ctx).Model(&models.Dish{ID: dish.ID}).Updates(map[string]interface{}{
		"category_id": dish.CategoryID,
		"name":        dish.Name,
		"description": dish.Description,
		"price":       dish.Price,
		"available":   dish.Available,
		"sort":        dish.Sort,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update dish %d: %w", id, err)
	}
	return s.GetDish(ctx, restaurantID, id)
}

// DeleteDish soft deletes a dish inside the scope and returns it
func (s *Catalog) DeleteDish(ctx context.Context, restaurantID, id uint) (*models.Dish, error) {
	dish, err := s.GetDish(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Dish{}, dish.ID).Error; err != nil {
		return nil, fmt.Errorf("delete dish %d: %w", id, err)
	}
	return dish, nil
}

// SetDishImage stores an uploaded image for a dish inside the scope
func (s *Catalog) SetDishImage(ctx context.Context, assets *AssetStore, restaurantID, id uint, data []byte, maxBytes int64) (*models.Dish, error) {
	dish, err := s.GetDish(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}
	path, err := assets.SaveUpload(NamespaceDishes, fmt.Sprintf("dish-%d", dish.ID), data, maxBytes)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Dish{ID: dish.ID}).UpdateColumn("image", path).Error; err != nil {
		_ = assets.Remove(path)
		return nil, fmt.Errorf("save dish image: %w", err)
	}
	old := dish.Image
	dish.Image = path
	if old != "" {
		_ = assets.Remove(old)
	}
	return dish, nil
}

// PublicMenu the restaurant behind slug with its categories and available dishes.
// With hideInactive an inactive restaurant is reported as ErrNotFound.
func (s *Catalog) PublicMenu(ctx context.Context, slug string, hideInactive bool) (*models.Restaurant, error) {
	var rest models.Restaurant
	err := s.db.WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort ASC, id ASC")
		}).
		Preload("Categories.Dishes", availableDishes).
		Where("slug = ?", slug).
		First(&rest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("public menu %q: %w", slug, err)
	}
	if hideInactive && !rest.Active {
		return nil, ErrNotFound
	}
	return &rest, nil
}

// PublicDish an available dish of the restaurant
func (s *Catalog) PublicDish(ctx context.Context, restaurantID, id uint) (*models.Dish, error) {
	var dish models.Dish
	err := s.scopedDishes(ctx, restaurantID).
		Where("id = ? AND available = ?", id, true).
		First(&dish).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("public dish %d: %w", id, err)
	}
	return &dish, nil
}

func applyDishInput(dish *models.Dish, in DishInput) error {
	verr := &ValidationError{}
	if in.CategoryID != nil {
		dish.CategoryID = *in.CategoryID
	}
	if in.Name != nil {
		if name, err := normalizeName("name", *in.Name, 100); err != nil {
			verr.Add("name", err.(*ValidationError).Fields["name"])
		} else {
			dish.Name = name
		}
	}
	if in.Description != nil {
		dish.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		price, err := models.ParsePrice(*in.Price)
		if err != nil {
			verr.Add("price", err.Error())
		} else {
			dish.Price = price
		}
	}
	if in.Available != nil {
		dish.Available = *in.Available
	}
	if in.Sort != nil {
		dish.Sort = *in.Sort
	}
	return verr.OrNil()
}

func normalizeName(field, name string, max int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewValidationError(field, field+" is required")
	}
	if utf8.RuneCountInString(name) > max {
		return "", NewValidationError(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return name, nil
}
