package api

import (
	"menuqr/config"
	"menuqr/database"
	"menuqr/logger"
	"menuqr/models"
	"menuqr/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PublicHandler anonymous menu pages. Every successful read records a visit.
type PublicHandler struct {
	cfg    *config.Config
	assets *service.AssetStore
}

// NewPublicHandler creates the handler
func NewPublicHandler(cfg *config.Config, assets *service.AssetStore) *PublicHandler {
	return &PublicHandler{cfg: cfg, assets: assets}
}

func (h *PublicHandler) record(c *gin.Context, restaurantID uint, dishID *uint, kind string) {
	if err := service.NewVisitRecorder(database.DB).Record(c.Request.Context(), restaurantID, dishID, kind); err != nil {
		// visit failures never fail the read
		logger.FromGin(c).Error("record visit", zap.Uint("restaurant_id", restaurantID), zap.Error(err))
	}
}

// Menu public menu of a restaurant
// @Summary Public menu
// @Description Categories with their available dishes. Records a menu visit.
// @Tags public
// @Produce json
// @Param slug path string true "restaurant slug"
// @Success 200 {object} Response{data=PublicMenuView}
// @Failure 404 {object} Response
// @Router /menu/{slug} [get]
func (h *PublicHandler) Menu(c *gin.Context) {
	rest, err := catalog().PublicMenu(c.Request.Context(), c.Param("slug"), h.cfg.Menu.HideInactive)
	if err != nil {
		respondError(c, err, "failed to load menu")
		return
	}
	h.record(c, rest.ID, nil, models.VisitKindMenu)

	Success(c, PublicMenuView{
		Name:        rest.Name,
		Slug:        rest.Slug,
		Description: rest.Description,
		LogoURL:     h.assets.URL(rest.Logo),
		Active:      rest.Active,
		Categories:  newCategoryViews(rest.Categories, h.assets),
	})
}

// Dish public detail of one dish
// @Summary Public dish
// @Description One available dish of the restaurant. Records a dish visit.
// @Tags public
// @Produce json
// @Param slug path string true "restaurant slug"
// @Param id path int true "dish id"
// @Success 200 {object} Response{data=DishView}
// @Failure 404 {object} Response
// @Router /menu/{slug}/dishes/{id} [get]
func (h *PublicHandler) Dish(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	rest, err := service.NewRegistry(database.DB, h.cfg, h.assets).FindBySlug(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, err, "failed to load menu")
		return
	}
	if h.cfg.Menu.HideInactive && !rest.Active {
		NotFound(c, "not found")
		return
	}
	dish, err := catalog().PublicDish(ctx, rest.ID, id)
	if err != nil {
		respondError(c, err, "failed to load dish")
		return
	}
	h.record(c, rest.ID, &dish.ID, models.VisitKindDish)
	Success(c, newDishView(dish, h.assets))
}
