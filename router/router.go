package router

import (
	"net/http"
	"strings"
	"time"

	"menuqr/api"
	"menuqr/config"
	_ "menuqr/docs"
	"menuqr/metrics"
	"menuqr/middleware"
	"menuqr/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	loginAttempts = 10
	loginWindow   = time.Minute
)

// SetupRouter builds the engine: public menu, owner API, assets and ops endpoints
func SetupRouter(cfg *config.Config, assets *service.AssetStore) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), metrics.Middleware(), CORSMiddleware(cfg.Server.CORSOrigins))
	r.MaxMultipartMemory = cfg.Storage.MaxUploadBytes() + 1<<20

	// stored logos, dish photos and QR codes
	r.StaticFS(assets.PublicPrefix(), assets.HTTPFileSystem())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	publicHandler := api.NewPublicHandler(cfg, assets)
	menu := r.Group("/menu")
	{
		menu.GET("/:slug", publicHandler.Menu)
		menu.GET("/:slug/dishes/:id", publicHandler.Dish)
	}

	v1 := r.Group("/api/v1")
	{
		authHandler := api.NewAuthHandler(cfg, assets)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(loginAttempts, loginWindow), authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
		}

		restaurantHandler := api.NewRestaurantHandler(cfg, assets)
		dashboardHandler := api.NewDashboardHandler(cfg, assets)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// works without a restaurant
			authorized.GET("/dashboard", dashboardHandler.Overview)

			owner := authorized.Group("")
			owner.Use(middleware.RequireRestaurant(restaurantHandler.FindOwned))
			{
				owner.GET("/dashboard/analytics", dashboardHandler.Analytics)
				owner.GET("/dashboard/analytics/export", dashboardHandler.Export)

				owner.GET("/restaurant", restaurantHandler.Get)
				owner.PUT("/restaurant", restaurantHandler.Update)
				owner.POST("/restaurant/logo", restaurantHandler.UploadLogo)
				owner.POST("/restaurant/qr", restaurantHandler.RegenerateQR)
				owner.GET("/restaurant/qr.png", restaurantHandler.QRImage)

				categoryHandler := api.NewCategoryHandler(assets)
				categories := owner.Group("/categories")
				{
					categories.GET("", categoryHandler.List)
					categories.POST("", categoryHandler.Create)
					categories.GET("/:id", categoryHandler.Get)
					categories.PUT("/:id", categoryHandler.Update)
					categories.DELETE("/:id", categoryHandler.Delete)
				}

				dishHandler := api.NewDishHandler(cfg, assets)
				dishes := owner.Group("/dishes")
				{
					dishes.GET("", dishHandler.List)
					dishes.POST("", dishHandler.Create)
					dishes.GET("/:id", dishHandler.Get)
					dishes.PUT("/:id", dishHandler.Update)
					dishes.DELETE("/:id", dishHandler.Delete)
					dishes.POST("/:id/image", dishHandler.UploadImage)
				}
			}
		}
	}

	return r
}

// CORSMiddleware allows credentialed cross-origin calls to the owner API from the
// listed dashboard origins only. Other origins get 403 on /api/; without origins no
// cross-origin access is granted. Public menu routes are never affected.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return func(c *gin.Context) {}
	}
	handle := cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "Cache-Control", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			return
		}
		handle(c)
	}
}
