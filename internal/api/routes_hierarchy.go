package api

import (
	"github.com/gin-gonic/gin"

	"github.com/assetmgr/assetmgr/internal/handlers"
)

func registerHierarchyRoutes(api *gin.RouterGroup, handler *handlers.HierarchyHandler, rebuildLimit gin.HandlerFunc) {
	group := api.Group("/hierarchy")
	{
		group.GET("", handler.Snapshot)
		group.GET("/:module", handler.Tree)
		group.GET("/nodes/:id", handler.Node)
		group.GET("/nodes/:id/descendants", handler.Descendants)
		group.POST("/rebuild", rebuildLimit, handler.Rebuild)
	}
}
