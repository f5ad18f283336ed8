package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"menuqr/config"
	"menuqr/database"
	"menuqr/logger"
	"menuqr/metrics"
	"menuqr/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PlaceholderRestaurantName used when an owner registers without naming the restaurant
const PlaceholderRestaurantName = "My Restaurant"

const defaultSlugAttempts = 5

// Registry owns the owner -> restaurant mapping, slugs and QR assets
type Registry struct {
	db          *gorm.DB
	assets      *AssetStore
	baseURL     string
	qrSize      int
	maxAttempts int
}

// NewRegistry creates a registry bound to db
func NewRegistry(db *gorm.DB, cfg *config.Config, assets *AssetStore) *Registry {
	r := &Registry{
		db:          db,
		assets:      assets,
		baseURL:     strings.TrimRight(cfg.Server.BaseURL, "/"),
		qrSize:      cfg.Menu.QRSize,
		maxAttempts: cfg.Menu.SlugRetryAttempts,
	}
	if r.maxAttempts <= 0 {
		r.maxAttempts = defaultSlugAttempts
	}
	return r
}

// WithDB returns a copy working on tx
func (r *Registry) WithDB(tx *gorm.DB) *Registry {
	cp := *r
	cp.db = tx
	return &cp
}

// Assets returns the asset store used for logos and QR images
func (r *Registry) Assets() *AssetStore {
	return r.assets
}

// PublicURL public menu address for slug
func (r *Registry) PublicURL(slug string) string {
	return r.baseURL + "/menu/" + slug
}

// FindByOwner explicit lookup of the owner's restaurant. ok is false when the owner
// has none.
func (r *Registry) FindByOwner(ctx context.Context, userID uint) (*models.Restaurant, bool, error) {
	var rest models.Restaurant
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&rest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find restaurant of user %d: %w", userID, err)
	}
	return &rest, true, nil
}

// FindBySlug restaurant by its public slug
func (r *Registry) FindBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	var rest models.Restaurant
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&rest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find restaurant %q: %w", slug, err)
	}
	return &rest, nil
}

// CreateTenant creates the owner's restaurant with a unique slug derived from name. QR
// generation is a separate step (RefreshQRCode) run by the caller once the row is
// committed.
func (r *Registry) CreateTenant(ctx context.Context, ownerID uint, name string) (*models.Restaurant, error) {
	return r.CreateTenantWithSlug(ctx, ownerID, name, name)
}

// CreateTenantWithSlug is CreateTenant with the slug derived from slugSource instead of
// the name
func (r *Registry) CreateTenantWithSlug(ctx context.Context, ownerID uint, name, slugSource string) (*models.Restaurant, error) {
	name, err := normalizeRestaurantName(name)
	if err != nil {
		return nil, err
	}
	if _, exists, err := r.FindByOwner(ctx, ownerID); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrTenantExists
	}

	rest := &models.Restaurant{UserID: ownerID, Name: name, Active: true}
	slug, err := r.saveWithUniqueSlug(ctx, Slugify(slugSource), 0, func(tx *gorm.DB, candidate string) error {
		rest.ID = 0
		rest.Slug = candidate
		return tx.Create(rest).Error
	})
	if err != nil {
		if database.IsDuplicateKeyOn(err, "restaurants", "user_id") {
			return nil, ErrTenantExists
		}
		return nil, err
	}
	rest.Slug = slug
	logger.L().Info("restaurant created",
		zap.Uint("restaurant_id", rest.ID),
		zap.Uint("user_id", ownerID),
		zap.String("slug", slug))
	return rest, nil
}

// PlaceholderSlugSource slug source of a restaurant registered without a name, unique
// per owner
func PlaceholderSlugSource(username string) string {
	return PlaceholderRestaurantName + " " + username
}

// saveWithUniqueSlug runs save with a candidate slug inside a transaction (a savepoint
// when r.db is already a transaction). A unique violation on the slug means a concurrent
// writer won the candidate. The next attempt only considers higher suffixes: reads
// inside an outer transaction may come from a snapshot that misses the winner.
func (r *Registry) saveWithUniqueSlug(ctx context.Context, base string, excludeID uint, save func(tx *gorm.DB, slug string) error) (string, error) {
	db := r.db.WithContext(ctx)
	from := 0
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		candidate, n, err := nextFreeSlug(ctx, db, base, excludeID, from)
		if err != nil {
			return "", err
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			return save(tx, candidate)
		})
		if err == nil {
			return candidate, nil
		}
		if !database.IsDuplicateKeyOn(err, "restaurants", "slug") {
			return "", err
		}
		from = n + 1
		metrics.SlugRetries.Inc()
		logger.L().Warn("slug taken concurrently, retrying",
			zap.String("slug", candidate),
			zap.Int("attempt", attempt))
	}
	return "", fmt.Errorf("%w after %d attempts: %s", ErrSlugConflict, r.maxAttempts, base)
}

// ProfileInput owner editable fields. Nil leaves a field unchanged. A non-nil empty Slug
// regenerates the slug from the name.
type ProfileInput struct {
	Name        *string
	Description *string
	Active      *bool
	Slug        *string
}

// UpdateProfile applies in to rest. The slug only changes when in.Slug is set; the QR
// image is regenerated when it does.
func (r *Registry) UpdateProfile(ctx context.Context, rest *models.Restaurant, in ProfileInput) error {
	updates := map[string]interface{}{}
	verr := &ValidationError{}

	if in.Name != nil {
		name, err := normalizeRestaurantName(*in.Name)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				for k, v := range ve.Fields {
					verr.Add(k, v)
				}
			}
		} else {
			updates["name"] = name
		}
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Active != nil {
		updates["active"] = *in.Active
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	newName := rest.Name
	if n, ok := updates["name"].(string); ok {
		newName = n
	}

	db := r.db.WithContext(ctx)
	if in.Slug == nil {
		if len(updates) == 0 {
			return nil
		}
		if err := db.Model(rest).Updates(updates).Error; err != nil {
			return fmt.Errorf("update restaurant: %w", err)
		}
		return db.First(rest, rest.ID).Error
	}

	base := Slugify(newName)
	if s := strings.TrimSpace(*in.Slug); s != "" {
		base = Slugify(s)
	}
	oldSlug := rest.Slug
	slug, err := r.saveWithUniqueSlug(ctx, base, rest.ID, func(tx *gorm.DB, candidate string) error {
		values := map[string]interface{}{"slug": candidate}
		for k, v := range updates {
			values[k] = v
		}
		return tx.Model(&models.Restaurant{ID: rest.ID}).Updates(values).Error
	})
	if err != nil {
		return err
	}
	if err := db.First(rest, rest.ID).Error; err != nil {
		return err
	}
	if slug != oldSlug {
		logger.L().Info("restaurant slug changed",
			zap.Uint("restaurant_id", rest.ID),
			zap.String("from", oldSlug),
			zap.String("to", slug))
		return r.RefreshQRCode(ctx, rest)
	}
	return nil
}

// RefreshQRCode renders the QR image for the restaurant's public URL, stores it under
// qr/ and updates only the qr_image column.
func (r *Registry) RefreshQRCode(ctx context.Context, rest *models.Restaurant) error {
	png, err := GenerateQRImage(r.PublicURL(rest.Slug), r.qrSize)
	if err != nil {
		return fmt.Errorf("generate qr: %w", err)
	}
	path, err := r.assets.Save(NamespaceQR, rest.Slug+".png", png)
	if err != nil {
		return err
	}
	old := rest.QRImage
	if err := r.db.WithContext(ctx).Model(&models.Restaurant{ID: rest.ID}).UpdateColumn("qr_image", path).Error; err != nil {
		return fmt.Errorf("save qr path: %w", err)
	}
	rest.QRImage = path
	if old != "" && old != path {
		if err := r.assets.Remove(old); err != nil {
			logger.L().Warn("remove old qr image", zap.String("path", old), zap.Error(err))
		}
	}
	return nil
}

// SetLogo validates and stores an uploaded logo
func (r *Registry) SetLogo(ctx context.Context, rest *models.Restaurant, data []byte, maxBytes int64) error {
	path, err := r.assets.SaveUpload(NamespaceLogos, rest.Slug, data, maxBytes)
	if err != nil {
		return err
	}
	old := rest.Logo
	if err := r.db.WithContext(ctx).Model(&models.Restaurant{ID: rest.ID}).UpdateColumn("logo", path).Error; err != nil {
		_ = r.assets.Remove(path)
		return fmt.Errorf("save logo path: %w", err)
	}
	rest.Logo = path
	if old != "" {
		_ = r.assets.Remove(old)
	}
	return nil
}

func normalizeRestaurantName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewValidationError("name", "name is required")
	}
	if utf8.RuneCountInString(name) > 100 {
		return "", NewValidationError("name", "name must be at most 100 characters")
	}
	return name, nil
}
