package api

import (
	"github.com/gin-gonic/gin"

	"github.com/assetmgr/assetmgr/internal/handlers"
)

func registerDashboardRoutes(api *gin.RouterGroup, dashboard *handlers.DashboardHandler, assets *handlers.AssetHandler) {
	api.GET("/dashboard", dashboard.View)
	api.GET("/dashboard/rollup", dashboard.Rollup)

	group := api.Group("/assets")
	{
		group.GET("", assets.List)
		group.GET("/:id", assets.Get)
		group.POST("", assets.Create)
	}
}
