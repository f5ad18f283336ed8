package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"menuqr/database"
	"menuqr/models"
	"menuqr/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newDashboardRouter(h *DashboardHandler, userID uint, rest *models.Restaurant) *gin.Engine {
	r := gin.New()
	r.Use(asOwner(userID, rest))
	r.GET("/dashboard", h.Overview)
	r.GET("/dashboard/analytics", h.Analytics)
	r.GET("/dashboard/analytics/export", h.Export)
	return r
}

func TestDashboardHandler_NoRestaurant(t *testing.T) {
	cfg, assets, _ := setupTestEnv(t)
	router := newDashboardRouter(NewDashboardHandler(cfg, assets), 42, nil)

	w := doJSON(router, "GET", "/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp DashboardResponse
	decode(t, w, &resp)
	assert.False(t, resp.Linked)
	assert.Nil(t, resp.Restaurant)
	assert.NotEmpty(t, resp.Message)
}

func TestDashboardHandler_Overview(t *testing.T) {
	cfg, assets, _ := setupTestEnv(t)
	rest, mains := seedRestaurant(t, cfg, assets, 1, "La Tasca")
	dish, err := service.NewCatalog(database.DB).CreateDish(t.Context(), rest.ID, service.DishInput{CategoryID: &mains.ID, Name: strPtr("Paella"), Price: strPtr("12.50")})
	require.NoError(t, err)

	visits := service.NewVisitRecorder(database.DB)
	require.NoError(t, visits.Record(t.Context(), rest.ID, nil, models.VisitKindMenu))
	require.NoError(t, visits.Record(t.Context(), rest.ID, &dish.ID, models.VisitKindDish))
	require.NoError(t, visits.Record(t.Context(), rest.ID, &dish.ID, models.VisitKindDish))
	old := models.VisitEvent{RestaurantID: rest.ID, Kind: models.VisitKindMenu, VisitedAt: time.Now().AddDate(0, 0, -20)}
	require.NoError(t, database.DB.Create(&old).Error)

	router := newDashboardRouter(NewDashboardHandler(cfg, assets), 1, rest)
	w := doJSON(router, "GET", "/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp DashboardResponse
	decode(t, w, &resp)
	assert.True(t, resp.Linked)
	assert.Equal(t, "la-tasca", resp.Restaurant.Slug)
	assert.Equal(t, 1, resp.CategoryCount)
	assert.Equal(t, 1, resp.DishCount)
	require.NotNil(t, resp.Visits)
	assert.Equal(t, int64(3), resp.Visits.Today)
	assert.Equal(t, int64(3), resp.Visits.LastDays)
	assert.Len(t, resp.Visits.Daily, service.AnalyticsWindowDays)
	require.Len(t, resp.Visits.TopDishes, 1)
	assert.Equal(t, service.DishViews{DishID: dish.ID, Name: "Paella", Views: 2}, resp.Visits.TopDishes[0])

	w = doJSON(router, "GET", "/dashboard/analytics?top=1&fill_gaps=false", "")
	require.Equal(t, http.StatusOK, w.Code)
	var summary service.VisitSummary
	decode(t, w, &summary)
	assert.Len(t, summary.Daily, 1)
	assert.Equal(t, int64(3), summary.Daily[0].Count)

	for _, q := range []string{"top=0", "top=51", "top=x", "fill_gaps=maybe"} {
		w = doJSON(router, "GET", "/dashboard/analytics?"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestDashboardHandler_Export(t *testing.T) {
	cfg, assets, _ := setupTestEnv(t)
	rest, _ := seedRestaurant(t, cfg, assets, 1, "La Tasca")
	require.NoError(t, service.NewVisitRecorder(database.DB).Record(t.Context(), rest.ID, nil, models.VisitKindMenu))

	router := newDashboardRouter(NewDashboardHandler(cfg, assets), 1, rest)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/dashboard/analytics/export", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), fmt.Sprintf("la-tasca-visits-%s.xlsx", time.Now().Format("20060102")))

	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Daily visits")
	require.NoError(t, err)
	// header, 14 days, total
	assert.Len(t, rows, service.AnalyticsWindowDays+2)
}
