package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	router.GET("/health", handler.HealthCheck)
	router.POST("/run", handler.TriggerExtraction)
	router.POST("/report", handler.TriggerReport)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Not found",
			"availableEndpoints": []string{
				"GET /health",
				"POST /run",
				"POST /report",
			},
		})
	})
}
