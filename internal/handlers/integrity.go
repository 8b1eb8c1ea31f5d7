package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/assetmgr/assetmgr/internal/integrity"
	"github.com/assetmgr/assetmgr/pkg/response"
)

// IntegrityHandler reports catalog integrity checks.
type IntegrityHandler struct {
	auditor *integrity.Auditor
}

// NewIntegrityHandler constructs an integrity handler.
func NewIntegrityHandler(auditor *integrity.Auditor) *IntegrityHandler {
	return &IntegrityHandler{auditor: auditor}
}

// GET /api/integrity
func (h *IntegrityHandler) Run(c *gin.Context) {
	response.Success(c, http.StatusOK, h.auditor.Run(requestContext(c)))
}
