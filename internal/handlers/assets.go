package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/assetmgr/assetmgr/internal/services"
	"github.com/assetmgr/assetmgr/pkg/response"
)

// AssetHandler lists and records assets counted by the dashboard.
type AssetHandler struct {
	svc *services.AssetService
}

// NewAssetHandler constructs an asset handler.
func NewAssetHandler(svc *services.AssetService) *AssetHandler {
	return &AssetHandler{svc: svc}
}

// List returns assets filtered by ?module, ?type (repeatable or comma
// separated), ?status and ?placeholders.
func (h *AssetHandler) List(c *gin.Context) {
	var types []string
	for _, value := range c.QueryArray("type") {
		types = append(types, strings.Split(value, ",")...)
	}

	assets, err := h.svc.List(requestContext(c), services.AssetFilter{
		Module:              c.Query("module"),
		Types:               types,
		Status:              c.Query("status"),
		IncludePlaceholders: parseBoolQuery(c, "placeholders", false),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, assets)
}

// Get returns a single asset.
func (h *AssetHandler) Get(c *gin.Context) {
	asset, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, asset)
}

// Create records a new asset.
func (h *AssetHandler) Create(c *gin.Context) {
	var payload assetPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	asset, err := h.svc.Create(requestContext(c), requestActor(c), payload.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, asset)
}

type assetPayload struct {
	ID            string         `json:"id" validate:"omitempty,nodeid"`
	ItemName      string         `json:"item_name" validate:"required,max=256"`
	Type          string         `json:"type" validate:"required,max=128"`
	Category      string         `json:"category" validate:"omitempty,module"`
	Status        string         `json:"status" validate:"max=64"`
	SerialNumber  string         `json:"serial_number" validate:"max=128"`
	Location      string         `json:"location" validate:"max=128"`
	AssignedTo    string         `json:"assigned_to" validate:"max=128"`
	IsPlaceholder bool           `json:"is_placeholder"`
	Metadata      map[string]any `json:"metadata"`
}

func (p assetPayload) toInput() services.AssetInput {
	return services.AssetInput{
		ID:            p.ID,
		ItemName:      p.ItemName,
		Type:          p.Type,
		Category:      p.Category,
		Status:        p.Status,
		SerialNumber:  p.SerialNumber,
		Location:      p.Location,
		AssignedTo:    p.AssignedTo,
		IsPlaceholder: p.IsPlaceholder,
		Metadata:      p.Metadata,
	}
}
