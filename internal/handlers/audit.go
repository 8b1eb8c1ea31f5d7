package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/assetmgr/assetmgr/internal/services"
	"github.com/assetmgr/assetmgr/pkg/response"
)

// AuditHandler lists catalog audit entries.
type AuditHandler struct {
	svc *services.AuditService
}

// NewAuditHandler constructs an audit handler.
func NewAuditHandler(svc *services.AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// GET /api/audit
func (h *AuditHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 50)
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	filters := services.AuditFilters{
		Actor:    c.Query("actor"),
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
		AssetID:  c.Query("asset_id"),
		Severity: c.Query("severity"),
	}
	if s := c.Query("since"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			filters.Since = &t
		}
	}
	if u := c.Query("until"); u != "" {
		if t, err := time.Parse(time.RFC3339, u); err == nil {
			filters.Until = &t
		}
	}

	logs, total, err := h.svc.List(requestContext(c), services.AuditListOptions{Page: page, PageSize: perPage, Filters: filters})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, logs, page, perPage, total)
}
