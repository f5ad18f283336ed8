package middleware

import (
	"context"
	"net/http"
	"strings"

	"menuqr/config"
	"menuqr/logger"
	"menuqr/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the identity and restaurant middlewares
const (
	ContextUserID     = "userID"
	ContextUsername   = "username"
	ContextRestaurant = "restaurant"
)

// SessionCookie carries the token for browser clients
const SessionCookie = "menuqr_session"

// Identity authenticated caller
type Identity struct {
	UserID   uint
	Username string
}

// IdentityProvider resolves the caller of a request. ok is false for anonymous requests.
type IdentityProvider interface {
	CurrentIdentity(c *gin.Context) (*Identity, bool)
}

// JWTProvider reads a session token from the Authorization header or, when the header
// is absent, from the session cookie
type JWTProvider struct{}

// CurrentIdentity implements IdentityProvider
func (JWTProvider) CurrentIdentity(c *gin.Context) (*Identity, bool) {
	var token string
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return nil, false
		}
		token = strings.TrimSpace(parts[1])
	} else if cookie, err := c.Cookie(SessionCookie); err == nil {
		token = cookie
	}
	if token == "" {
		return nil, false
	}
	claims, err := ParseToken(token)
	if err != nil {
		return nil, false
	}
	return &Identity{UserID: claims.UserID, Username: claims.Username}, true
}

// RequireIdentity rejects anonymous requests with 401 and stores the caller in the context
func RequireIdentity(p IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := p.CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "authentication required",
			})
			return
		}
		c.Set(ContextUserID, id.UserID)
		c.Set(ContextUsername, id.Username)
		c.Next()
	}
}

// JWTAuth RequireIdentity with the token adapter
func JWTAuth() gin.HandlerFunc {
	return RequireIdentity(JWTProvider{})
}

// GetCurrentUserID id of the authenticated caller, 0 if none
func GetCurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// GetCurrentUsername username of the authenticated caller
func GetCurrentUsername(c *gin.Context) string {
	return c.GetString(ContextUsername)
}

// RestaurantFinder explicit owner -> restaurant lookup
type RestaurantFinder func(ctx context.Context, userID uint) (*models.Restaurant, bool, error)

// RequireRestaurant resolves the caller's restaurant. Callers without one get 404.
// Must run after RequireIdentity.
func RequireRestaurant(find RestaurantFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		rest, ok, err := find(c.Request.Context(), GetCurrentUserID(c))
		if err != nil {
			logger.FromGin(c).Error("load restaurant", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": config.SafeErrorMessage(err, "failed to load restaurant"),
			})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"code":    http.StatusNotFound,
				"message": "no restaurant linked",
			})
			return
		}
		c.Set(ContextRestaurant, rest)
		c.Next()
	}
}

// CurrentRestaurant restaurant stored by RequireRestaurant
func CurrentRestaurant(c *gin.Context) *models.Restaurant {
	if v, ok := c.Get(ContextRestaurant); ok {
		if rest, ok := v.(*models.Restaurant); ok {
			return rest
		}
	}
	return nil
}
