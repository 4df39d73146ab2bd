// Package routes maps the /api/v1 surface onto the controllers.
package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/controllers"
)

// SetupRouter builds the engine. auth guards every route that needs a signed-in user;
// the server passes middleware.EnsureValidToken, tests pass a stand-in.
func SetupRouter(cfg *config.Config, auth gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	// Leave room for a 25MB artwork plus form overhead
	router.MaxMultipartMemory = 32 << 20

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", controllers.HealthCheck)
		v1.GET("/database/status", controllers.DatabaseStatus)
		v1.GET("/uploads/:filename", controllers.GetUploadedArtwork)
		v1.GET("/products", controllers.ListProducts)
		v1.GET("/products/:id", controllers.GetProduct)
	}

	protected := v1.Group("")
	protected.Use(auth)
	{
		protected.POST("/users", controllers.CreateUser)
		protected.GET("/users/me", controllers.GetMyProfile)
		protected.PUT("/users/me", controllers.UpdateMyProfile)

		protected.POST("/orders", controllers.CreateOrder)
		protected.GET("/orders", controllers.ListOrders)
		protected.GET("/orders/:id", controllers.GetOrder)
		protected.PATCH("/orders/:id/status", controllers.UpdateOrderStatus)
		protected.PATCH("/orders/:id/discount", controllers.ApplyOrderDiscount)

		protected.GET("/orders/:id/artwork", controllers.GetOrderArtwork)
		protected.POST("/orders/:id/items/:itemId/artwork", controllers.UploadItemArtwork)
		protected.PUT("/orders/:id/items/:itemId/artwork", controllers.UpdateItemArtwork)
		protected.DELETE("/orders/:id/items/:itemId/artwork", controllers.UnlinkItemArtwork)
		protected.POST("/orders/:id/items/:itemId/artwork/revision", controllers.RequestItemRevision)

		protected.POST("/orders/:id/messages", controllers.SendMessage)
		protected.GET("/orders/:id/messages", controllers.ListMessages)

		protected.POST("/designs", controllers.CreateDesign)
		protected.GET("/designs", controllers.ListMyDesigns)
		protected.DELETE("/designs/:id", controllers.DeleteDesign)

		protected.GET("/notifications", controllers.ListNotifications)
		protected.PUT("/notifications/:id/read", controllers.MarkNotificationRead)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowCredentials = true
	return corsCfg
}
