package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"menuqr/config"
	"menuqr/database"
	"menuqr/middleware"
	"menuqr/service"

	"github.com/gin-gonic/gin"
)

const (
	defaultTopDishes = 5
	maxTopDishes     = 50
)

// DashboardHandler owner overview and visit analytics
type DashboardHandler struct {
	cfg    *config.Config
	assets *service.AssetStore
}

// NewDashboardHandler creates the handler
func NewDashboardHandler(cfg *config.Config, assets *service.AssetStore) *DashboardHandler {
	return &DashboardHandler{cfg: cfg, assets: assets}
}

// DashboardResponse Linked is false when the caller has no restaurant; everything
// else is then omitted
type DashboardResponse struct {
	Linked        bool                  `json:"linked"`
	Username      string                `json:"username"`
	Message       string                `json:"message,omitempty"`
	Restaurant    *RestaurantView       `json:"restaurant,omitempty"`
	CategoryCount int                   `json:"category_count"`
	DishCount     int                   `json:"dish_count"`
	Visits        *service.VisitSummary `json:"visits,omitempty"`
}

func analyticsParams(c *gin.Context, fillGapsDefault bool) (int, bool, bool) {
	top := defaultTopDishes
	if raw := c.Query("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTopDishes {
			ValidationFailed(c, map[string]string{"top": fmt.Sprintf("top must be between 1 and %d", maxTopDishes)})
			return 0, false, false
		}
		top = n
	}
	fillGaps := fillGapsDefault
	if raw := c.Query("fill_gaps"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			ValidationFailed(c, map[string]string{"fill_gaps": "fill_gaps must be a boolean"})
			return 0, false, false
		}
		fillGaps = b
	}
	return top, fillGaps, true
}

// Overview dashboard landing data
// @Summary Dashboard
// @Description Restaurant, catalog counts and visit analytics. Callers without a restaurant get linked=false instead of an error.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=DashboardResponse}
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()
	reg := service.NewRegistry(database.DB, h.cfg, h.assets)
	rest, found, err := reg.FindByOwner(ctx, middleware.GetCurrentUserID(c))
	if err != nil {
		respondError(c, err, "failed to load restaurant")
		return
	}
	resp := DashboardResponse{Username: middleware.GetCurrentUsername(c)}
	if !found {
		resp.Message = "no restaurant is linked to this account"
		Success(c, resp)
		return
	}

	cats, err := catalog().ListCategories(ctx, rest.ID)
	if err != nil {
		respondError(c, err, "failed to load catalog")
		return
	}
	summary, err := service.NewVisitRecorder(database.DB).Summary(ctx, rest.ID, defaultTopDishes, true)
	if err != nil {
		respondError(c, err, "failed to load visits")
		return
	}

	view := newRestaurantView(rest, reg)
	resp.Linked = true
	resp.Restaurant = &view
	resp.CategoryCount = len(cats)
	for _, cat := range cats {
		resp.DishCount += len(cat.Dishes)
	}
	resp.Visits = summary
	Success(c, resp)
}

// Analytics visit counts of the caller's restaurant
// @Summary Visit analytics
// @Description Visits today, in the trailing 14 days, per day and the most viewed dishes. Day boundaries use the server time zone.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param top query int false "number of top dishes" default(5)
// @Param fill_gaps query bool false "include days without visits" default(false)
// @Success 200 {object} Response{data=service.VisitSummary}
// @Failure 400 {object} Response
// @Failure 404 {object} Response "no restaurant linked"
// @Router /api/v1/dashboard/analytics [get]
func (h *DashboardHandler) Analytics(c *gin.Context) {
	top, fillGaps, ok := analyticsParams(c, false)
	if !ok {
		return
	}
	summary, err := service.NewVisitRecorder(database.DB).Summary(c.Request.Context(), middleware.CurrentRestaurant(c).ID, top, fillGaps)
	if err != nil {
		respondError(c, err, "failed to load visits")
		return
	}
	Success(c, summary)
}

// Export analytics as an Excel workbook
// @Summary Export visit analytics
// @Tags dashboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param top query int false "number of top dishes" default(5)
// @Success 200 {file} binary
// @Router /api/v1/dashboard/analytics/export [get]
func (h *DashboardHandler) Export(c *gin.Context) {
	top, _, ok := analyticsParams(c, true)
	if !ok {
		return
	}
	rest := middleware.CurrentRestaurant(c)
	summary, err := service.NewVisitRecorder(database.DB).Summary(c.Request.Context(), rest.ID, top, true)
	if err != nil {
		respondError(c, err, "failed to load visits")
		return
	}
	now := time.Now()
	buf, err := service.AnalyticsWorkbook(rest, summary, now)
	if err != nil {
		respondError(c, err, "failed to build workbook")
		return
	}

	filename := fmt.Sprintf("%s-visits-%s.xlsx", rest.Slug, now.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
