package api

import (
	"github.com/gin-gonic/gin"

	"github.com/assetmgr/assetmgr/internal/handlers"
)

func registerCatalogRoutes(api *gin.RouterGroup, handler *handlers.CatalogHandler) {
	folders := api.Group("/folders")
	{
		folders.GET("", handler.ListFolders)
		folders.POST("", handler.SaveFolder)
		folders.DELETE("/:id", handler.DeleteFolder)
	}

	kinds := api.Group("/asset-kinds")
	{
		kinds.GET("", handler.ListKinds)
		kinds.POST("", handler.SaveKind)
		kinds.DELETE("/:name", handler.DeleteKind)
	}
}
