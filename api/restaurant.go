package api

import (
	"context"
	"fmt"
	"net/http"

	"menuqr/config"
	"menuqr/database"
	"menuqr/middleware"
	"menuqr/models"
	"menuqr/service"

	"github.com/gin-gonic/gin"
)

// RestaurantHandler the owner's restaurant profile and QR code
type RestaurantHandler struct {
	cfg    *config.Config
	assets *service.AssetStore
}

// NewRestaurantHandler creates the handler
func NewRestaurantHandler(cfg *config.Config, assets *service.AssetStore) *RestaurantHandler {
	return &RestaurantHandler{cfg: cfg, assets: assets}
}

func (h *RestaurantHandler) registry() *service.Registry {
	return service.NewRegistry(database.DB, h.cfg, h.assets)
}

// FindOwned owner lookup for middleware.RequireRestaurant
func (h *RestaurantHandler) FindOwned(ctx context.Context, userID uint) (*models.Restaurant, bool, error) {
	return h.registry().FindByOwner(ctx, userID)
}

// UpdateRestaurantRequest omitted fields are left unchanged. An empty slug regenerates
// it from the name.
type UpdateRestaurantRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100" example:"La Tasca"`
	Description *string `json:"description" example:"Tapas since 1998"`
	Active      *bool   `json:"active"`
	Slug        *string `json:"slug" binding:"omitempty,max=50" example:"la-tasca"`
}

// Get the caller's restaurant
// @Summary Get my restaurant
// @Tags restaurant
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=RestaurantView}
// @Failure 401 {object} Response
// @Failure 404 {object} Response "no restaurant linked"
// @Router /api/v1/restaurant [get]
func (h *RestaurantHandler) Get(c *gin.Context) {
	Success(c, newRestaurantView(middleware.CurrentRestaurant(c), h.registry()))
}

// Update edits the profile
// @Summary Update my restaurant
// @Description Renaming keeps the slug. Sending slug changes it (made unique) and regenerates the QR code; an empty slug derives a new one from the name.
// @Tags restaurant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateRestaurantRequest true "profile"
// @Success 200 {object} Response{data=RestaurantView}
// @Failure 400 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/restaurant [put]
func (h *RestaurantHandler) Update(c *gin.Context) {
	var req UpdateRestaurantRequest
	if !bindJSON(c, &req) {
		return
	}
	rest := middleware.CurrentRestaurant(c)
	reg := h.registry()
	err := reg.UpdateProfile(c.Request.Context(), rest, service.ProfileInput{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
		Slug:        req.Slug,
	})
	if err != nil {
		respondError(c, err, "failed to update restaurant")
		return
	}
	SuccessWithMessage(c, "updated", newRestaurantView(rest, reg))
}

// UploadLogo replaces the logo
// @Summary Upload logo
// @Tags restaurant
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "png, jpeg, gif or webp"
// @Success 200 {object} Response{data=RestaurantView}
// @Failure 400 {object} Response
// @Router /api/v1/restaurant/logo [post]
func (h *RestaurantHandler) UploadLogo(c *gin.Context) {
	maxBytes := h.cfg.Storage.MaxUploadBytes()
	data, ok := readUpload(c, maxBytes)
	if !ok {
		return
	}
	rest := middleware.CurrentRestaurant(c)
	reg := h.registry()
	if err := reg.SetLogo(c.Request.Context(), rest, data, maxBytes); err != nil {
		respondError(c, err, "failed to save logo")
		return
	}
	Success(c, newRestaurantView(rest, reg))
}

// RegenerateQR renders the QR code again
// @Summary Regenerate QR code
// @Tags restaurant
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=RestaurantView}
// @Router /api/v1/restaurant/qr [post]
func (h *RestaurantHandler) RegenerateQR(c *gin.Context) {
	rest := middleware.CurrentRestaurant(c)
	reg := h.registry()
	if err := reg.RefreshQRCode(c.Request.Context(), rest); err != nil {
		respondError(c, err, "failed to generate qr code")
		return
	}
	Success(c, newRestaurantView(rest, reg))
}

// QRImage the stored QR PNG, generated first if missing
// @Summary Download QR code
// @Tags restaurant
// @Produce png
// @Security BearerAuth
// @Param download query bool false "send as attachment"
// @Success 200 {file} binary
// @Router /api/v1/restaurant/qr.png [get]
func (h *RestaurantHandler) QRImage(c *gin.Context) {
	rest := middleware.CurrentRestaurant(c)
	reg := h.registry()

	var data []byte
	var err error
	if rest.QRImage != "" {
		data, err = h.assets.Read(rest.QRImage)
	}
	if rest.QRImage == "" || err != nil {
		if err := reg.RefreshQRCode(c.Request.Context(), rest); err != nil {
			respondError(c, err, "failed to generate qr code")
			return
		}
		data, err = h.assets.Read(rest.QRImage)
		if err != nil {
			respondError(c, err, "failed to read qr code")
			return
		}
	}

	if c.Query("download") == "true" || c.Query("download") == "1" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-qr.png", rest.Slug))
	}
	c.Data(http.StatusOK, "image/png", data)
}
