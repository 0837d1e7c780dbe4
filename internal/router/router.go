package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type Router struct {
	productController       *controller.ProductController
	configurationController *controller.ConfigurationController
	cartController          *controller.CartController
	adminController         *controller.AdminController
	authMiddleware          *middleware.AuthMiddleware
	config                  *config.Config
}

func NewRouter(
	productController *controller.ProductController,
	configurationController *controller.ConfigurationController,
	cartController *controller.CartController,
	adminController *controller.AdminController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		productController:       productController,
		configurationController: configurationController,
		cartController:          cartController,
		adminController:         adminController,
		authMiddleware:          authMiddleware,
		config:                  cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:id", r.productController.GetProduct)
		}

		// Guests may configure; committing to a cart needs an account
		configurations := v1.Group("/configurations")
		configurations.Use(r.authMiddleware.OptionalAuthenticate())
		{
			configurations.POST("", r.configurationController.Start)
			configurations.GET("/:id", r.configurationController.Get)
			configurations.POST("/:id/toggle", r.configurationController.Toggle)
			configurations.PUT("/:id/quantity", r.configurationController.SetQuantity)
			configurations.DELETE("/:id", r.configurationController.Discard)
			configurations.GET("/:id/live", r.configurationController.Live)
			configurations.POST("/:id/commit", r.authMiddleware.Authenticate(), r.configurationController.Commit)
		}

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.GET("/export", r.cartController.DownloadExport)
			cart.POST("/export", r.cartController.PublishExport)
			cart.PUT("/:id", r.cartController.UpdateCartItem)
			cart.DELETE("/:id", r.cartController.RemoveFromCart)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(middleware.RoleAdmin))
		{
			admin.POST("/catalog/import", r.adminController.ImportCatalog)
			admin.PUT("/feature-values/:id/availability", r.adminController.SetValueAvailability)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
