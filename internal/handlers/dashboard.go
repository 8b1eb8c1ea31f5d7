package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/assetmgr/assetmgr/internal/services"
	"github.com/assetmgr/assetmgr/pkg/response"
)

// DashboardHandler serves status rollups over the hierarchy.
type DashboardHandler struct {
	svc           *services.DashboardService
	defaultModule string
}

// NewDashboardHandler constructs a dashboard handler. Requests without a
// module query fall back to defaultModule.
func NewDashboardHandler(svc *services.DashboardService, defaultModule string) *DashboardHandler {
	return &DashboardHandler{svc: svc, defaultModule: defaultModule}
}

func (h *DashboardHandler) module(c *gin.Context) string {
	if module := strings.TrimSpace(c.Query("module")); module != "" {
		return module
	}
	return h.defaultModule
}

// View returns dashboard cards for ?module and optional ?parent.
func (h *DashboardHandler) View(c *gin.Context) {
	view, err := h.svc.View(requestContext(c), h.module(c), c.Query("parent"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Rollup returns the status counts below ?node in ?module.
func (h *DashboardHandler) Rollup(c *gin.Context) {
	node := c.Query("node")
	counts, err := h.svc.Rollup(requestContext(c), h.module(c), node)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"module": h.module(c),
		"node":   node,
		"counts": counts,
	})
}
