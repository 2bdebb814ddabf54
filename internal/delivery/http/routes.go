package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prelovedguru/backend/config"
	"github.com/prelovedguru/backend/internal/platform/metrics"
)

// SetupRouter creates and configures the Gin router. m may be nil, in which
// case no metrics are recorded or exposed.
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger, m *metrics.Manager) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	if m != nil {
		router.Use(MetricsMiddleware(m))
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(NewRateLimiter(cfg.RateLimit.PerIP).Middleware())
	{
		catalog := v1.Group("/catalog")
		{
			catalog.GET("", handler.GetCatalog)
			catalog.GET("/facets", handler.GetFacets)
			catalog.GET("/products/:id", handler.GetProduct)
			catalog.POST("/filter", handler.FilterCatalog)
			catalog.POST("/refresh", handler.RefreshCatalog)
		}

		v1.POST("/search", handler.Search)

		profile := v1.Group("/profile")
		{
			profile.GET("/wishlist", handler.GetWishlist)
			profile.GET("/matches", handler.GetMatches)
			profile.DELETE("/matches/:id", handler.DeleteMatch)
		}

		retail := v1.Group("/retail")
		{
			retail.GET("/inventory", handler.GetInventory)
			retail.POST("/inventory", handler.AddInventoryItem)
			retail.POST("/inventory/filter", handler.FilterInventory)
			retail.DELETE("/inventory/:id", handler.DeleteInventoryItem)
			retail.POST("/detect", handler.DetectAttributes)
		}
	}

	return router
}
