package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, handler *Handler) {
	v1 := router.Group("/api/v1")

	v1.GET("/registry", handler.GetRegistry) // GET /api/v1/registry

	// :id is an index id, a comma-separated list of ids or "all"; ?group= narrows it.
	indices := v1.Group("/indices")
	indices.GET("", handler.ListIndices)                       // GET /api/v1/indices
	indices.GET("/:id/stats", handler.GetIndexStats)           // GET /api/v1/indices/:id/stats
	indices.POST("/:id/actions/:action", handler.RunAction)    // POST /api/v1/indices/:id/actions/:action
	indices.PUT("/:id/documents/:doc_id", handler.PutDocument) // PUT /api/v1/indices/:id/documents/:doc_id

	schemas := v1.Group("/schemas")
	schemas.POST("/:id/map", handler.MapDocument)       // POST /api/v1/schemas/:id/map
	schemas.POST("/:id/refresh", handler.RefreshSchema) // POST /api/v1/schemas/:id/refresh
}
