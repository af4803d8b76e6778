package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	config "github.com/sow2grow/farm-mall-api/config"
	controllers "github.com/sow2grow/farm-mall-api/controllers"
	middleware "github.com/sow2grow/farm-mall-api/middleware"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	api := r.Group("/api")

	api.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to Sow2Grow Farm Mall API"})
	})

	// public
	api.POST("/auth/register", controllers.Register(cfg))
	api.POST("/auth/login", controllers.Login(cfg))
	api.GET("/orchards", controllers.ListOrchards(cfg))
	api.GET("/orchards/:id", controllers.GetOrchard(cfg))

	// protected
	auth := middleware.AuthMiddleware(cfg)

	users := api.Group("/users")
	users.Use(auth)
	{
		users.GET("/me", controllers.GetMe(cfg))
		users.PATCH("/me", controllers.UpdateMe(cfg))
	}

	orchards := api.Group("/orchards")
	orchards.Use(auth)
	{
		orchards.POST("", controllers.CreateOrchard(cfg))
		orchards.PATCH("/:id", controllers.UpdateOrchard(cfg))
		orchards.DELETE("/:id", controllers.DeleteOrchard(cfg))
		orchards.POST("/:id/bestow", controllers.BestowPockets(cfg))
		orchards.POST("/:id/complete", controllers.CompleteOrchard(cfg))
	}

	bestowments := api.Group("/bestowments")
	bestowments.Use(auth)
	{
		bestowments.GET("", controllers.ListBestowments(cfg))
		bestowments.GET("/:id", controllers.GetBestowment(cfg))
	}
}
