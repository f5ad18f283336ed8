package api

import (
	"strconv"

	"menuqr/config"
	"menuqr/logger"
	"menuqr/middleware"
	"menuqr/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DishHandler dishes of the caller's restaurant
type DishHandler struct {
	cfg    *config.Config
	assets *service.AssetStore
}

// NewDishHandler creates the handler
func NewDishHandler(cfg *config.Config, assets *service.AssetStore) *DishHandler {
	return &DishHandler{cfg: cfg, assets: assets}
}

// DishRequest create requires category_id, name and price; update leaves omitted fields
// unchanged. price is a decimal string or number with at most two places.
type DishRequest struct {
	CategoryID  *uint      `json:"category_id" example:"1"`
	Name        *string    `json:"name" binding:"omitempty,max=100" example:"Paella"`
	Description *string    `json:"description" example:"Saffron rice with seafood"`
	Price       *PriceText `json:"price" swaggertype:"string" example:"12.50"`
	Available   *bool      `json:"available"`
	Sort        *int       `json:"sort"`
}

func (r DishRequest) input() service.DishInput {
	return service.DishInput{
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price.stringPtr(),
		Available:   r.Available,
		Sort:        r.Sort,
	}
}

// List dishes, optionally of one category
// @Summary List dishes
// @Tags dishes
// @Produce json
// @Security BearerAuth
// @Param category_id query int false "only this category"
// @Success 200 {object} Response{data=[]DishView}
// @Router /api/v1/dishes [get]
func (h *DishHandler) List(c *gin.Context) {
	var categoryID uint
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			ValidationFailed(c, map[string]string{"category_id": "category_id must be a number"})
			return
		}
		categoryID = uint(id)
	}
	list, err := catalog().ListDishes(c.Request.Context(), middleware.CurrentRestaurant(c).ID, categoryID)
	if err != nil {
		respondError(c, err, "failed to list dishes")
		return
	}
	Success(c, newDishViews(list, h.assets))
}

// Get one dish
// @Summary Get dish
// @Tags dishes
// @Produce json
// @Security BearerAuth
// @Param id path int true "dish id"
// @Success 200 {object} Response{data=DishView}
// @Failure 404 {object} Response
// @Router /api/v1/dishes/{id} [get]
func (h *DishHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	dish, err := catalog().GetDish(c.Request.Context(), middleware.CurrentRestaurant(c).ID, id)
	if err != nil {
		respondError(c, err, "failed to load dish")
		return
	}
	Success(c, newDishView(dish, h.assets))
}

// Create adds a dish to one of the caller's categories
// @Summary Create dish
// @Tags dishes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DishRequest true "dish"
// @Success 200 {object} Response{data=DishView}
// @Failure 400 {object} Response
// @Failure 404 {object} Response "category not found"
// @Router /api/v1/dishes [post]
func (h *DishHandler) Create(c *gin.Context) {
	var req DishRequest
	if !bindJSON(c, &req) {
		return
	}
	dish, err := catalog().CreateDish(c.Request.Context(), middleware.CurrentRestaurant(c).ID, req.input())
	if err != nil {
		respondError(c, err, "failed to create dish")
		return
	}
	SuccessWithMessage(c, "created", newDishView(dish, h.assets))
}

// Update edits a dish
// @Summary Update dish
// @Tags dishes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "dish id"
// @Param request body DishRequest true "fields to change"
// @Success 200 {object} Response{data=DishView}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/dishes/{id} [put]
func (h *DishHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req DishRequest
	if !bindJSON(c, &req) {
		return
	}
	dish, err := catalog().UpdateDish(c.Request.Context(), middleware.CurrentRestaurant(c).ID, id, req.input())
	if err != nil {
		respondError(c, err, "failed to update dish")
		return
	}
	SuccessWithMessage(c, "updated", newDishView(dish, h.assets))
}

// Delete removes a dish
// @Summary Delete dish
// @Tags dishes
// @Produce json
// @Security BearerAuth
// @Param id path int true "dish id"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/dishes/{id} [delete]
func (h *DishHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	dish, err := catalog().DeleteDish(c.Request.Context(), middleware.CurrentRestaurant(c).ID, id)
	if err != nil {
		respondError(c, err, "failed to delete dish")
		return
	}
	if err := h.assets.Remove(dish.Image); err != nil {
		logger.FromGin(c).Warn("remove dish image", zap.String("path", dish.Image), zap.Error(err))
	}
	SuccessWithMessage(c, "deleted", nil)
}

// UploadImage replaces the dish photo
// @Summary Upload dish image
// @Tags dishes
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "dish id"
// @Param file formData file true "png, jpeg, gif or webp"
// @Success 200 {object} Response{data=DishView}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/dishes/{id}/image [post]
func (h *DishHandler) UploadImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	maxBytes := h.cfg.Storage.MaxUploadBytes()
	data, ok := readUpload(c, maxBytes)
	if !ok {
		return
	}
	dish, err := catalog().SetDishImage(c.Request.Context(), h.assets, middleware.CurrentRestaurant(c).ID, id, data, maxBytes)
	if err != nil {
		respondError(c, err, "failed to save dish image")
		return
	}
	Success(c, newDishView(dish, h.assets))
}
