package api

import (
	"menuqr/database"
	"menuqr/logger"
	"menuqr/middleware"
	"menuqr/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CategoryHandler menu sections of the caller's restaurant
type CategoryHandler struct {
	assets *service.AssetStore
}

// NewCategoryHandler creates the handler
func NewCategoryHandler(assets *service.AssetStore) *CategoryHandler {
	return &CategoryHandler{assets: assets}
}

// CategoryRequest create requires name; update leaves omitted fields unchanged
type CategoryRequest struct {
	Name *string `json:"name" binding:"omitempty,max=50" example:"Starters"`
	Sort *int    `json:"sort" example:"1"`
}

func (r CategoryRequest) input() service.CategoryInput {
	return service.CategoryInput{Name: r.Name, Sort: r.Sort}
}

func catalog() *service.Catalog {
	return service.NewCatalog(database.DB)
}

// List categories with their dishes
// @Summary List categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]CategoryView}
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	rest := middleware.CurrentRestaurant(c)
	list, err := catalog().ListCategories(c.Request.Context(), rest.ID)
	if err != nil {
		respondError(c, err, "failed to list categories")
		return
	}
	Success(c, newCategoryViews(list, h.assets))
}

// Get one category
// @Summary Get category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "category id"
// @Success 200 {object} Response{data=CategoryView}
// @Failure 404 {object} Response
// @Router /api/v1/categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cat, err := catalog().GetCategory(c.Request.Context(), middleware.CurrentRestaurant(c).ID, id)
	if err != nil {
		respondError(c, err, "failed to load category")
		return
	}
	Success(c, newCategoryView(cat, h.assets))
}

// Create adds a category
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "category"
// @Success 200 {object} Response{data=CategoryView}
// @Failure 400 {object} Response
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := catalog().CreateCategory(c.Request.Context(), middleware.CurrentRestaurant(c).ID, req.input())
	if err != nil {
		respondError(c, err, "failed to create category")
		return
	}
	SuccessWithMessage(c, "created", newCategoryView(cat, h.assets))
}

// Update edits a category
// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "category id"
// @Param request body CategoryRequest true "fields to change"
// @Success 200 {object} Response{data=CategoryView}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := catalog().UpdateCategory(c.Request.Context(), middleware.CurrentRestaurant(c).ID, id, req.input())
	if err != nil {
		respondError(c, err, "failed to update category")
		return
	}
	SuccessWithMessage(c, "updated", newCategoryView(cat, h.assets))
}

// Delete removes a category and its dishes
// @Summary Delete category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "category id"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	images, err := catalog().DeleteCategory(c.Request.Context(), middleware.CurrentRestaurant(c).ID, id)
	if err != nil {
		respondError(c, err, "failed to delete category")
		return
	}
	for _, img := range images {
		if err := h.assets.Remove(img); err != nil {
			logger.FromGin(c).Warn("remove dish image", zap.String("path", img), zap.Error(err))
		}
	}
	SuccessWithMessage(c, "deleted", nil)
}
