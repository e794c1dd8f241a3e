package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"elite-rental-funnel/internal/config"
	"elite-rental-funnel/internal/funnel"
	"elite-rental-funnel/internal/leadhook"
	"elite-rental-funnel/internal/listings"
	"elite-rental-funnel/internal/metrics"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	Proxy     *listings.Proxy
	Forwarder *leadhook.Forwarder
	Metrics   *metrics.Metrics
	Markup    []byte
	Page      *funnel.Page
}

// SetupRoutes configures the dev server routes
func SetupRoutes(router *gin.Engine, rc *RouterConfig) {
	listingsHandler := NewListingsHandler(rc.Proxy)
	leadHookHandler := NewLeadHookHandler(rc.Forwarder)
	pageHandler := NewPageHandler(rc.Markup, rc.Page)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "elite-rental-funnel",
			"mode":    config.GetDeploymentMode(),
			"version": "1.0.0",
		})
	})

	if rc.Metrics != nil {
		router.GET("/metrics", gin.WrapH(rc.Metrics.Handler()))
	}

	// Same-origin function paths used by the page
	functions := router.Group("/.netlify/functions")
	{
		functions.GET("/listings", listingsHandler.GetListings)
		functions.Any("/lead-hook", leadHookHandler.PostLead)
	}

	api := router.Group("/api")
	{
		api.GET("/listings", listingsHandler.GetListings)
		api.Any("/lead-hook", leadHookHandler.PostLead)
	}

	router.GET("/", pageHandler.GetPage)
	router.POST("/", pageHandler.SubmitForm)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	})
}
