package service

import (
	"context"
	"testing"

	"menuqr/config"
	"menuqr/database"
	"menuqr/models"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var ctx = context.Background()

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{BaseURL: "https://menu.test/"},
		Menu:   config.MenuConfig{SlugRetryAttempts: 3, QRSize: 128},
	}
}

func newTestRegistry(t *testing.T) (*gorm.DB, *Registry, afero.Fs) {
	t.Helper()
	db := newTestDB(t)
	fs := afero.NewMemMapFs()
	return db, NewRegistry(db, testConfig(), NewAssetStore(fs, "/media")), fs
}

// seedTenant creates a restaurant with one category holding the given dishes
func seedTenant(t *testing.T, db *gorm.DB, ownerID uint, slug string, dishes ...models.Dish) (*models.Restaurant, *models.Category) {
	t.Helper()
	rest := &models.Restaurant{UserID: ownerID, Name: slug, Slug: slug, Active: true}
	require.NoError(t, db.Create(rest).Error)
	cat := &models.Category{RestaurantID: rest.ID, Name: "Mains"}
	require.NoError(t, db.Create(cat).Error)
	for i := range dishes {
		dishes[i].CategoryID = cat.ID
		require.NoError(t, db.Create(&dishes[i]).Error)
	}
	cat.Dishes = dishes
	return rest, cat
}

func strPtr(s string) *string { return &s }
func uintPtr(u uint) *uint    { return &u }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
