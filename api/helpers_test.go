package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"menuqr/config"
	"menuqr/database"
	"menuqr/middleware"
	"menuqr/models"
	"menuqr/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func testConfig(mode string) *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Mode: mode, BaseURL: "https://menu.test"},
		JWT:     config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Storage: config.StorageConfig{PublicPrefix: "/media", MaxUploadMB: 1},
		Menu:    config.MenuConfig{SlugRetryAttempts: 3, QRSize: 128},
	}
}

// setupTestEnv swaps database.DB for an in-memory sqlite database
func setupTestEnv(t *testing.T) (*config.Config, *service.AssetStore, afero.Fs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	oldDB := database.DB
	database.DB = db
	cfg := testConfig("debug")
	config.GlobalConfig = cfg
	middleware.InitJWT(cfg)
	t.Cleanup(func() {
		database.DB = oldDB
		config.GlobalConfig = nil
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	fs := afero.NewMemMapFs()
	return cfg, service.NewAssetStore(fs, "/media"), fs
}

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	return mock, func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

// asOwner stands in for the identity and restaurant middlewares
func asOwner(userID uint, rest *models.Restaurant) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUsername, "owner")
		if rest != nil {
			c.Set(middleware.ContextRestaurant, rest)
		}
	}
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type testResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) testResponse {
	t.Helper()
	var resp testResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}

// seedRestaurant creates a restaurant with one category through the services
func seedRestaurant(t *testing.T, cfg *config.Config, assets *service.AssetStore, ownerID uint, name string) (*models.Restaurant, *models.Category) {
	t.Helper()
	rest, err := service.NewRegistry(database.DB, cfg, assets).CreateTenant(t.Context(), ownerID, name)
	require.NoError(t, err)
	cat, err := service.NewCatalog(database.DB).CreateCategory(t.Context(), rest.ID, service.CategoryInput{Name: strPtr("Mains")})
	require.NoError(t, err)
	return rest, cat
}

func strPtr(s string) *string { return &s }
