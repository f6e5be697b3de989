package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/neogeo/surveyor-tracking-backend/internal/config"
	"github.com/neogeo/surveyor-tracking-backend/internal/handler"
	"github.com/neogeo/surveyor-tracking-backend/internal/middleware"
	"github.com/neogeo/surveyor-tracking-backend/internal/service"
)

// Handlers bundles the handler set wired into the router.
type Handlers struct {
	Location *handler.LocationHandler
	Surveyor *handler.SurveyorHandler
	Config   *handler.ConfigHandler
}

// SetupRouter builds the gin engine with middleware and all routes
func SetupRouter(cfg *config.Config, h Handlers, surveyors *service.SurveyorService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Surveyor Tracking API is running",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	checkCredentials := func(username, password string) bool {
		_, ok := surveyors.Authenticate(username, password)
		return ok
	}

	api := r.Group("/api")
	{
		// Live ingestion: Basic-auth guarded; mobile clients ping
		// aggressively during poor connectivity, so rate-limit too.
		live := api.Group("/live")
		live.Use(middleware.BasicAuth(checkCredentials))
		{
			limited := live.Group("")
			limited.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateWindow))
			{
				limited.POST("/location", h.Location.PublishLiveLocation)
				limited.POST("/location/batch", h.Location.PublishLocationBatch)
			}
			// Session-end uploads bypass the rate limiter so a logout
			// is never dropped.
			live.POST("/location/final", h.Location.PublishFinalLocation)
		}

		// Track queries
		location := api.Group("/location")
		{
			location.GET("/:surveyorId/latest", h.Location.GetLatestLocation)
			location.GET("/:surveyorId/track", h.Location.GetTrackHistory)
			location.GET("/:surveyorId/enhanced-track", h.Location.GetEnhancedTrackHistory)
			location.GET("/:surveyorId/distance", h.Location.GetTotalDistance)
		}

		// Surveyor directory
		surveyorRoutes := api.Group("/surveyors")
		{
			surveyorRoutes.GET("", h.Surveyor.ListSurveyors)
			surveyorRoutes.GET("/filter", h.Surveyor.FilterSurveyors)
			surveyorRoutes.GET("/status", h.Surveyor.GetStatuses)
			surveyorRoutes.GET("/with-locations", h.Surveyor.GetSurveyorsWithLocations)
			surveyorRoutes.GET("/check-username", h.Surveyor.CheckUsername)
			surveyorRoutes.POST("/login", h.Surveyor.Login)
			surveyorRoutes.POST("/admin/login", h.Surveyor.AdminLogin)
			surveyorRoutes.POST("/:id/activity", h.Surveyor.TouchActivity)
			surveyorRoutes.GET("/:id/status", h.Surveyor.GetSurveyorStatus)

			// Directory mutations need the dashboard bearer token.
			guarded := surveyorRoutes.Group("")
			guarded.Use(middleware.JWTAuth(cfg.JWTSecret))
			{
				guarded.POST("", h.Surveyor.SaveSurveyor)
				guarded.DELETE("/:id", h.Surveyor.DeleteSurveyor)
			}
		}

		// Dashboard dropdown configuration
		configRoutes := api.Group("/config")
		{
			configRoutes.GET("/dropdowns", h.Config.GetDropdowns)
			configRoutes.GET("/cities", h.Config.GetCities)
			configRoutes.GET("/projects", h.Config.GetProjects)
			configRoutes.GET("/statuses", h.Config.GetStatuses)
			configRoutes.GET("/roles", h.Config.GetRoles)
			configRoutes.GET("/projects-by-city", h.Config.GetProjectsByCity)
			configRoutes.GET("/cities-by-project", h.Config.GetCitiesByProject)
		}
	}

	return r
}
