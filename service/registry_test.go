package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"menuqr/models"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const insertRival = "INSERT INTO restaurants (user_id, name, slug, active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"

func isSlugCheck(tx *gorm.DB) bool {
	return tx.Statement.Table == "restaurants" && strings.Contains(tx.Statement.SQL.String(), "slug = ?")
}

func TestCreateTenant_SequentialNamesGetSuffixes(t *testing.T) {
	_, reg, _ := newTestRegistry(t)

	names := []string{"Pizzería Pepe", "Pizzeria Pepe", "pizzeria   pepe!", "PIZZERÍA PEPE"}
	for i, name := range names {
		rest, err := reg.CreateTenant(ctx, uint(i+1), name)
		require.NoError(t, err)
		want := "pizzeria-pepe"
		if i > 0 {
			want = fmt.Sprintf("pizzeria-pepe-%d", i)
		}
		assert.Equal(t, want, rest.Slug)
		assert.True(t, rest.Active)
		assert.Empty(t, rest.QRImage, "qr is a separate step")
	}
}

func TestCreateTenant_OneRestaurantPerOwner(t *testing.T) {
	_, reg, _ := newTestRegistry(t)

	_, err := reg.CreateTenant(ctx, 7, "First")
	require.NoError(t, err)
	_, err = reg.CreateTenant(ctx, 7, "Second")
	assert.ErrorIs(t, err, ErrTenantExists)
}

func TestCreateTenant_Validation(t *testing.T) {
	_, reg, _ := newTestRegistry(t)

	_, err := reg.CreateTenant(ctx, 1, "   ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
}

func TestCreateTenant_RetriesWhenSlugTakenConcurrently(t *testing.T) {
	db, reg, _ := newTestRegistry(t)

	// a concurrent writer commits the candidate right after the pre-check saw it free
	armed := true
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:concurrent_writer", func(tx *gorm.DB) {
		if !armed || !isSlugCheck(tx) {
			return
		}
		armed = false
		now := time.Now()
		require.NoError(t, db.Session(&gorm.Session{NewDB: true}).Exec(insertRival, 999, "Rival", "la-tasca", true, now, now).Error)
	}))

	rest, err := reg.CreateTenant(ctx, 1, "La Tasca")
	require.NoError(t, err)
	assert.Equal(t, "la-tasca-1", rest.Slug)

	var count int64
	require.NoError(t, db.Model(&models.Restaurant{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestCreateTenant_RetriesInsideOuterTransaction(t *testing.T) {
	db, reg, _ := newTestRegistry(t)

	// slug reads come from a snapshot that never shows the rival row
	armed := true
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:stale_snapshot", func(tx *gorm.DB) {
		if !isSlugCheck(tx) {
			return
		}
		if armed {
			armed = false
			now := time.Now()
			require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Exec(insertRival, 999, "Rival", "la-tasca", true, now, now).Error)
		}
		if dest, ok := tx.Statement.Dest.(*[]string); ok {
			*dest = nil
		}
	}))

	var rest *models.Restaurant
	err := db.Transaction(func(tx *gorm.DB) error {
		created, err := reg.WithDB(tx).CreateTenant(ctx, 1, "La Tasca")
		rest = created
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "la-tasca-1", rest.Slug)

	var slugs []string
	require.NoError(t, db.Model(&models.Restaurant{}).Order("slug").Pluck("slug", &slugs).Error)
	assert.Equal(t, []string{"la-tasca", "la-tasca-1"}, slugs)
}

func TestCreateTenant_ConflictAfterBoundedRetries(t *testing.T) {
	db, reg, _ := newTestRegistry(t)

	// a rival takes every candidate right before the insert
	rival := uint(1000)
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:always_lose", func(tx *gorm.DB) {
		r, ok := tx.Statement.Dest.(*models.Restaurant)
		if !ok || r.UserID != 1 {
			return
		}
		rival++
		now := time.Now()
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Exec(insertRival, rival, "Rival", r.Slug, true, now, now).Error)
	}))

	_, err := reg.CreateTenant(ctx, 1, "La Tasca")
	assert.ErrorIs(t, err, ErrSlugConflict)

	_, found, err := reg.FindByOwner(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCreateTenant_OneSlugQueryPerAllocation(t *testing.T) {
	db, reg, _ := newTestRegistry(t)

	checks := 0
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:count_checks", func(tx *gorm.DB) {
		if isSlugCheck(tx) {
			checks++
		}
	}))

	var last *models.Restaurant
	for i := 1; i <= 25; i++ {
		checks = 0
		rest, err := reg.CreateTenant(ctx, uint(i), "Bar Sol")
		require.NoError(t, err)
		assert.Equal(t, 1, checks, "tenant %d", i)
		last = rest
	}
	assert.Equal(t, "bar-sol-24", last.Slug)
}

func TestCreateTenantWithSlug_Placeholder(t *testing.T) {
	_, reg, _ := newTestRegistry(t)

	a, err := reg.CreateTenantWithSlug(ctx, 1, PlaceholderRestaurantName, PlaceholderSlugSource("tasca"))
	require.NoError(t, err)
	b, err := reg.CreateTenantWithSlug(ctx, 2, PlaceholderRestaurantName, PlaceholderSlugSource("Sol_Bar"))
	require.NoError(t, err)

	assert.Equal(t, PlaceholderRestaurantName, a.Name)
	assert.Equal(t, "my-restaurant-tasca", a.Slug)
	assert.Equal(t, "my-restaurant-sol-bar", b.Slug)
}

func TestFindByOwner_Absent(t *testing.T) {
	_, reg, _ := newTestRegistry(t)
	rest, found, err := reg.FindByOwner(ctx, 42)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, rest)
}

func TestFindBySlug(t *testing.T) {
	_, reg, _ := newTestRegistry(t)
	created, err := reg.CreateTenant(ctx, 1, "Sushi Go")
	require.NoError(t, err)

	rest, err := reg.FindBySlug(ctx, "sushi-go")
	require.NoError(t, err)
	assert.Equal(t, created.ID, rest.ID)

	_, err = reg.FindBySlug(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefreshQRCode(t *testing.T) {
	db, reg, fs := newTestRegistry(t)
	rest, err := reg.CreateTenant(ctx, 1, "Sushi Go")
	require.NoError(t, err)

	require.NoError(t, reg.RefreshQRCode(ctx, rest))
	assert.Equal(t, "qr/sushi-go.png", rest.QRImage)

	data, err := afero.ReadFile(fs, "/qr/sushi-go.png")
	require.NoError(t, err)
	want, err := GenerateQRImage("https://menu.test/menu/sushi-go", 128)
	require.NoError(t, err)
	assert.Equal(t, want, data)

	var stored models.Restaurant
	require.NoError(t, db.First(&stored, rest.ID).Error)
	assert.Equal(t, "qr/sushi-go.png", stored.QRImage)
	assert.Equal(t, "sushi-go", stored.Slug)
}

func TestUpdateProfile_KeepsSlug(t *testing.T) {
	db, reg, _ := newTestRegistry(t)
	rest, err := reg.CreateTenant(ctx, 1, "Sushi Go")
	require.NoError(t, err)

	// re-save with the same name
	require.NoError(t, reg.UpdateProfile(ctx, rest, ProfileInput{Name: strPtr("Sushi Go")}))
	assert.Equal(t, "sushi-go", rest.Slug)

	// rename without touching the slug
	require.NoError(t, reg.UpdateProfile(ctx, rest, ProfileInput{
		Name:        strPtr("Sushi Go Go"),
		Description: strPtr("  fresh fish  "),
		Active:      boolPtr(false),
	}))
	assert.Equal(t, "sushi-go", rest.Slug)
	assert.Equal(t, "Sushi Go Go", rest.Name)
	assert.Equal(t, "fresh fish", rest.Description)
	assert.False(t, rest.Active)

	// explicit slug equal to the current one is not a collision with itself
	require.NoError(t, reg.UpdateProfile(ctx, rest, ProfileInput{Slug: strPtr("sushi-go")}))
	assert.Equal(t, "sushi-go", rest.Slug)

	var stored models.Restaurant
	require.NoError(t, db.First(&stored, rest.ID).Error)
	assert.Equal(t, "sushi-go", stored.Slug)
}

func TestUpdateProfile_ClearedSlugRegenerates(t *testing.T) {
	_, reg, fs := newTestRegistry(t)
	_, err := reg.CreateTenant(ctx, 1, "Casa Luis")
	require.NoError(t, err)
	rest, err := reg.CreateTenant(ctx, 2, "Sushi Go")
	require.NoError(t, err)
	require.NoError(t, reg.RefreshQRCode(ctx, rest))

	require.NoError(t, reg.UpdateProfile(ctx, rest, ProfileInput{Name: strPtr("Casa Luis"), Slug: strPtr("")}))
	assert.Equal(t, "casa-luis-1", rest.Slug)
	assert.Equal(t, "qr/casa-luis-1.png", rest.QRImage)

	exists, err := afero.Exists(fs, "/qr/casa-luis-1.png")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = afero.Exists(fs, "/qr/sushi-go.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdateProfile_ExplicitSlug(t *testing.T) {
	_, reg, _ := newTestRegistry(t)
	_, err := reg.CreateTenant(ctx, 1, "Taken")
	require.NoError(t, err)
	rest, err := reg.CreateTenant(ctx, 2, "Mine")
	require.NoError(t, err)

	require.NoError(t, reg.UpdateProfile(ctx, rest, ProfileInput{Slug: strPtr("Taken")}))
	assert.Equal(t, "taken-1", rest.Slug)

	err = reg.UpdateProfile(ctx, rest, ProfileInput{Name: strPtr("")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name is required", verr.Fields["name"])
}

func TestSetLogo(t *testing.T) {
	_, reg, fs := newTestRegistry(t)
	rest, err := reg.CreateTenant(ctx, 1, "Sushi Go")
	require.NoError(t, err)

	require.NoError(t, reg.SetLogo(ctx, rest, pngBytes(t), 1<<20))
	assert.True(t, strings.HasPrefix(rest.Logo, "logos/sushi-go-"))
	first := rest.Logo

	require.NoError(t, reg.SetLogo(ctx, rest, pngBytes(t), 1<<20))
	assert.NotEqual(t, first, rest.Logo)
	exists, _ := afero.Exists(fs, "/"+first)
	assert.False(t, exists, "previous logo removed")

	err = reg.SetLogo(ctx, rest, []byte("plain text"), 1<<20)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
