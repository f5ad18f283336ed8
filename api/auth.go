package api

import (
	"strings"
	"time"

	"menuqr/config"
	"menuqr/database"
	"menuqr/logger"
	"menuqr/middleware"
	"menuqr/models"
	"menuqr/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler registration and sessions
type AuthHandler struct {
	cfg          *config.Config
	assets       *service.AssetStore
	emailService *service.EmailService
}

// NewAuthHandler creates the handler
func NewAuthHandler(cfg *config.Config, assets *service.AssetStore) *AuthHandler {
	return &AuthHandler{
		cfg:          cfg,
		assets:       assets,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// RegisterRequest sign up payload
type RegisterRequest struct {
	Username       string `json:"username" binding:"required,min=3,max=50" example:"tasca"`
	Password       string `json:"password" binding:"required,min=6,max=72" example:"password123"`
	Email          string `json:"email" binding:"omitempty,email,max=100" example:"owner@example.com"`
	RestaurantName string `json:"restaurant_name" binding:"max=100" example:"La Tasca"`
}

func (r *RegisterRequest) trim() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.RestaurantName = strings.TrimSpace(r.RestaurantName)
}

// RegisterResponse the new account, its restaurant and a session token
type RegisterResponse struct {
	Token      string         `json:"token"`
	User       models.User    `json:"user"`
	Restaurant RestaurantView `json:"restaurant"`
}

// LoginRequest credentials; username may also be the email
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"tasca"`
	Password string `json:"password" binding:"required" example:"password123"`
}

func (r *LoginRequest) trim() {
	r.Username = strings.TrimSpace(r.Username)
}

// LoginResponse session token
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// Register creates an owner account and its restaurant
// @Summary Register an owner
// @Description Creates the user and its restaurant in one transaction, then generates the QR code and sends the optional welcome email. Without restaurant_name a placeholder name is used and the slug is derived from the username.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "account"
// @Success 200 {object} Response{data=RegisterResponse}
// @Failure 400 {object} Response "validation failed or username taken"
// @Failure 409 {object} Response "slug could not be allocated"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	name, slugSource := req.RestaurantName, req.RestaurantName
	if name == "" {
		name = service.PlaceholderRestaurantName
		slugSource = service.PlaceholderSlugSource(req.Username)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "failed to hash password")
		return
	}

	ctx := c.Request.Context()
	registry := service.NewRegistry(database.DB, h.cfg, h.assets)
	user := models.User{Username: req.Username, Password: string(hashed), Email: req.Email}
	var rest *models.Restaurant

	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return service.ErrUsernameTaken
		}
		if err := tx.Create(&user).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return service.ErrUsernameTaken
			}
			return err
		}
		created, err := registry.WithDB(tx).CreateTenantWithSlug(ctx, user.ID, name, slugSource)
		rest = created
		return err
	})
	if err != nil {
		respondError(c, err, "registration failed")
		return
	}

	log := logger.FromGin(c)
	if err := registry.RefreshQRCode(ctx, rest); err != nil {
		// the account exists; the owner can regenerate the code from the dashboard
		log.Error("generate qr after registration", zap.Uint("restaurant_id", rest.ID), zap.Error(err))
	}
	h.sendWelcome(c, &user, rest, registry)

	token, err := middleware.GenerateToken(user.ID, user.Username, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "failed to issue token")
		return
	}
	setSessionCookie(c, token, h.cfg.JWT.ExpireTime)

	log.Info("owner registered", zap.Uint("user_id", user.ID), zap.String("slug", rest.Slug))
	SuccessWithMessage(c, "registered", RegisterResponse{
		Token:      token,
		User:       user,
		Restaurant: newRestaurantView(rest, registry),
	})
}

func (h *AuthHandler) sendWelcome(c *gin.Context, user *models.User, rest *models.Restaurant, registry *service.Registry) {
	if user.Email == "" || !h.emailService.Enabled() {
		return
	}
	var qr []byte
	if rest.QRImage != "" {
		qr, _ = h.assets.Read(rest.QRImage)
	}
	if err := h.emailService.SendWelcomeEmail(user.Email, user.Username, rest.Name, registry.PublicURL(rest.Slug), qr); err != nil {
		logger.FromGin(c).Warn("send welcome email", zap.String("to", user.Email), zap.Error(err))
	}
}

// Login issues a session token
// @Summary Log in
// @Description Returns a bearer token and sets the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "credentials"
// @Success 200 {object} Response{data=LoginResponse}
// @Failure 400 {object} Response
// @Failure 401 {object} Response "invalid credentials"
// @Failure 429 {object} Response "too many attempts"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	var user models.User
	login := req.Username
	if err := database.DB.WithContext(c.Request.Context()).
		Where("username = ? OR (email <> '' AND email = ?)", login, login).
		First(&user).Error; err != nil {
		Unauthorized(c, "invalid username or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		Unauthorized(c, "invalid username or password")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "failed to issue token")
		return
	}
	setSessionCookie(c, token, h.cfg.JWT.ExpireTime)

	Success(c, LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.cfg.JWT.ExpireTime),
		User:      user,
	})
}

// Logout clears the session cookie
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} Response
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	clearSessionCookie(c)
	SuccessWithMessage(c, "logged out", nil)
}
