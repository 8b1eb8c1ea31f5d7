package api

import (
	"github.com/gin-gonic/gin"

	"github.com/assetmgr/assetmgr/internal/handlers"
)

func registerIntegrityRoutes(api *gin.RouterGroup, handler *handlers.IntegrityHandler) {
	api.GET("/integrity", handler.Run)
}
