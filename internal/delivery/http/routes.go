package http

import (
	"github.com/gin-gonic/gin"
	"github.com/nutridiary/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	v1.Use(OwnerMiddleware())
	{
		foods := v1.Group("/foods")
		{
			foods.GET("/search", handler.SearchFoods)
			foods.GET("/barcode/:code", handler.GetFoodByBarcode)
			foods.GET("/:id", handler.GetFood)
			foods.POST("", RequireOwner(), handler.CreateFood)
			foods.PUT("/:id", RequireOwner(), handler.UpdateFood)
			foods.DELETE("/:id", RequireOwner(), handler.DeleteFood)
		}

		v1.POST("/units/convert", handler.ConvertUnits)

		recognition := v1.Group("/recognition")
		{
			recognition.POST("/labels", handler.MapLabels)
			recognition.POST("/image", handler.RecognizeImage)
		}

		recipes := v1.Group("/recipes")
		{
			recipes.POST("/analyze", handler.AnalyzeRecipe)
			recipes.POST("/save", RequireOwner(), handler.SaveRecipe)
		}

		personal := v1.Group("", RequireOwner())
		{
			personal.GET("/goals", handler.GetGoals)
			personal.PUT("/goals", handler.SaveGoals)

			personal.GET("/diary/:date", handler.GetDiaryDay)
			personal.POST("/diary/:date/entries", handler.AddDiaryEntry)
			personal.DELETE("/diary/:date", handler.ClearDiaryDay)
			personal.DELETE("/diary/:date/:slot", handler.ClearDiaryMeal)
			personal.PUT("/entries/:id", handler.UpdateDiaryEntry)
			personal.DELETE("/entries/:id", handler.RemoveDiaryEntry)

			personal.GET("/reports/daily/:date", handler.DailyReport)
			personal.GET("/reports/period", handler.PeriodReport)
		}
	}

	return router
}
