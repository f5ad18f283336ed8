package service

import (
	"testing"

	"menuqr/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dish(name, price string, available bool) models.Dish {
	return models.Dish{Name: name, Price: decimal.RequireFromString(price), Available: available}
}

func TestCatalog_CrossTenantIsNotFound(t *testing.T) {
	db := newTestDB(t)
	c := NewCatalog(db)
	a, catA := seedTenant(t, db, 1, "tenant-a", dish("Paella", "12.50", true))
	b, _ := seedTenant(t, db, 2, "tenant-b")
	dishID := catA.Dishes[0].ID

	_, err := c.GetCategory(ctx, b.ID, catA.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.UpdateCategory(ctx, b.ID, catA.ID, CategoryInput{Name: strPtr("Hijacked")})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.DeleteCategory(ctx, b.ID, catA.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.GetDish(ctx, b.ID, dishID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.UpdateDish(ctx, b.ID, dishID, DishInput{Price: strPtr("1.00")})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.DeleteDish(ctx, b.ID, dishID)
	assert.ErrorIs(t, err, ErrNotFound)

	// creating a dish in someone else's category
	_, err = c.CreateDish(ctx, b.ID, DishInput{CategoryID: uintPtr(catA.ID), Name: strPtr("X"), Price: strPtr("1")})
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := c.ListDishes(ctx, b.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	// untouched for the owner
	got, err := c.GetDish(ctx, a.ID, dishID)
	require.NoError(t, err)
	assert.Equal(t, "Paella", got.Name)
	assert.Equal(t, "12.5", got.Price.String())
}

func TestCatalog_CreateStampsOwner(t *testing.T) {
	db := newTestDB(t)
	c := NewCatalog(db)
	rest, _ := seedTenant(t, db, 1, "tenant-a")

	cat, err := c.CreateCategory(ctx, rest.ID, CategoryInput{Name: strPtr("  Desserts "), Sort: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, rest.ID, cat.RestaurantID)
	assert.Equal(t, "Desserts", cat.Name)
	assert.Equal(t, 3, cat.Sort)

	d, err := c.CreateDish(ctx, rest.ID, DishInput{
		CategoryID: uintPtr(cat.ID),
		Name:       strPtr("Flan"),
		Price:      strPtr("4.5"),
	})
	require.NoError(t, err)
	assert.True(t, d.Available, "dishes are available by default")
	assert.True(t, d.Price.Equal(decimal.RequireFromString("4.50")))

	d, err = c.CreateDish(ctx, rest.ID, DishInput{
		CategoryID: uintPtr(cat.ID),
		Name:       strPtr("Tarta"),
		Price:      strPtr("0"),
		Available:  boolPtr(false),
	})
	require.NoError(t, err)
	var stored models.Dish
	require.NoError(t, db.First(&stored, d.ID).Error)
	assert.False(t, stored.Available)
}

func TestCatalog_Validation(t *testing.T) {
	db := newTestDB(t)
	c := NewCatalog(db)
	rest, cat := seedTenant(t, db, 1, "tenant-a", dish("Paella", "12.50", true))

	var verr *ValidationError
	_, err := c.CreateCategory(ctx, rest.ID, CategoryInput{})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")

	_, err = c.CreateDish(ctx, rest.ID, DishInput{})
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)

	cases := map[string]string{
		"-1":      models.ErrPriceNegative.Error(),
		"1.999":   models.ErrPriceTooManyPlaces.Error(),
		"1000000": models.ErrPriceTooManyDigits.Error(),
		"twelve":  models.ErrPriceMalformed.Error(),
		"1e3":     models.ErrPriceMalformed.Error(),
	}
	for price, msg := range cases {
		_, err = c.UpdateDish(ctx, rest.ID, cat.Dishes[0].ID, DishInput{Price: strPtr(price)})
		require.ErrorAs(t, err, &verr, price)
		assert.Equal(t, msg, verr.Fields["price"], price)
	}

	got, err := c.GetDish(ctx, rest.ID, cat.Dishes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "12.5", got.Price.String(), "rejected prices leave the dish untouched")
}

func TestCatalog_UpdateDishMovesWithinScope(t *testing.T) {
	db := newTestDB(t)
	c := NewCatalog(db)
	rest, cat := seedTenant(t, db, 1, "tenant-a", dish("Paella", "12.50", true))
	_, foreign := seedTenant(t, db, 2, "tenant-b")
	other, err := c.CreateCategory(ctx, rest.ID, CategoryInput{Name: strPtr("Rice")})
	require.NoError(t, err)

	d, err := c.UpdateDish(ctx, rest.ID, cat.Dishes[0].ID, DishInput{CategoryID: uintPtr(other.ID), Available: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, other.ID, d.CategoryID)
	assert.False(t, d.Available)

	_, err = c.UpdateDish(ctx, rest.ID, d.ID, DishInput{CategoryID: uintPtr(foreign.ID)})
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := c.ListDishes(ctx, rest.ID, other.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	list, err = c.ListDishes(ctx, rest.ID, cat.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCatalog_DeleteCategoryRemovesDishes(t *testing.T) {
	db := newTestDB(t)
	c := NewCatalog(db)
	withImage := dish("Paella", "12.50", true)
	withImage.Image = "dishes/dish-1-abc.png"
	rest, cat := seedTenant(t, db, 1, "tenant-a", withImage, dish("Gazpacho", "6", true))

	images, err := c.DeleteCategory(ctx, rest.ID, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"dishes/dish-1-abc.png"}, images)

	var count int64
	require.NoError(t, db.Model(&models.Dish{}).Where("category_id = ?", cat.ID).Count(&count).Error)
	assert.Zero(t, count)
	list, err := c.ListCategories(ctx, rest.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCatalog_DeleteDish(t *testing.T) {
	db := newTestDB(t)
	c := NewCatalog(db)
	rest, cat := seedTenant(t, db, 1, "tenant-a", dish("Paella", "12.50", true))

	d, err := c.DeleteDish(ctx, rest.ID, cat.Dishes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Paella", d.Name)
	_, err = c.GetDish(ctx, rest.ID, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_ListOrdering(t *testing.T) {
	db := newTestDB(t)
	c := NewCatalog(db)
	rest, _ := seedTenant(t, db, 1, "tenant-a")
	_, err := c.CreateCategory(ctx, rest.ID, CategoryInput{Name: strPtr("Second"), Sort: intPtr(2)})
	require.NoError(t, err)
	_, err = c.CreateCategory(ctx, rest.ID, CategoryInput{Name: strPtr("First"), Sort: intPtr(-1)})
	require.NoError(t, err)

	list, err := c.ListCategories(ctx, rest.ID)
	require.NoError(t, err)
	names := make([]string, len(list))
	for i, cat := range list {
		names[i] = cat.Name
	}
	assert.Equal(t, []string{"First", "Mains", "Second"}, names)
}

func TestCatalog_PublicMenu(t *testing.T) {
	db := newTestDB(t)
	c := NewCatalog(db)
	rest, cat := seedTenant(t, db, 1, "tenant-a", dish("Paella", "12.50", true), dish("Sold out", "9", false))

	menu, err := c.PublicMenu(ctx, "tenant-a", false)
	require.NoError(t, err)
	require.Len(t, menu.Categories, 1)
	require.Len(t, menu.Categories[0].Dishes, 1)
	assert.Equal(t, "Paella", menu.Categories[0].Dishes[0].Name)

	_, err = c.PublicDish(ctx, rest.ID, cat.Dishes[1].ID)
	assert.ErrorIs(t, err, ErrNotFound)
	d, err := c.PublicDish(ctx, rest.ID, cat.Dishes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Paella", d.Name)

	_, err = c.PublicMenu(ctx, "missing", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_PublicMenuInactivePolicy(t *testing.T) {
	db := newTestDB(t)
	c := NewCatalog(db)
	rest, _ := seedTenant(t, db, 1, "tenant-a")
	require.NoError(t, db.Model(rest).Update("active", false).Error)

	menu, err := c.PublicMenu(ctx, "tenant-a", false)
	require.NoError(t, err)
	assert.False(t, menu.Active)

	_, err = c.PublicMenu(ctx, "tenant-a", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_SetDishImage(t *testing.T) {
	db := newTestDB(t)
	c := NewCatalog(db)
	fs := afero.NewMemMapFs()
	assets := NewAssetStore(fs, "/media")
	rest, cat := seedTenant(t, db, 1, "tenant-a", dish("Paella", "12.50", true))
	other, _ := seedTenant(t, db, 2, "tenant-b")

	d, err := c.SetDishImage(ctx, assets, rest.ID, cat.Dishes[0].ID, pngBytes(t), 1<<20)
	require.NoError(t, err)
	assert.Regexp(t, `^dishes/dish-\d+-[0-9a-f]{12}\.png$`, d.Image)

	_, err = c.SetDishImage(ctx, assets, other.ID, cat.Dishes[0].ID, pngBytes(t), 1<<20)
	assert.ErrorIs(t, err, ErrNotFound)
}
