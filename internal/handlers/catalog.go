package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/assetmgr/assetmgr/internal/services"
	"github.com/assetmgr/assetmgr/pkg/response"
)

// CatalogHandler exposes folder and asset kind maintenance endpoints.
type CatalogHandler struct {
	svc *services.CatalogService
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(svc *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ListFolders returns every folder ordered for display.
func (h *CatalogHandler) ListFolders(c *gin.Context) {
	folders, err := h.svc.ListFolders(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, folders)
}

// SaveFolder creates or updates a folder.
func (h *CatalogHandler) SaveFolder(c *gin.Context) {
	var payload folderPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	folder, err := h.svc.SaveFolder(requestContext(c), requestActor(c), payload.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, folder)
}

// DeleteFolder removes a folder, re-parenting its children.
func (h *CatalogHandler) DeleteFolder(c *gin.Context) {
	if err := h.svc.DeleteFolder(requestContext(c), requestActor(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListKinds returns every asset kind.
func (h *CatalogHandler) ListKinds(c *gin.Context) {
	kinds, err := h.svc.ListKinds(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, kinds)
}

// SaveKind creates or updates an asset kind keyed by name.
func (h *CatalogHandler) SaveKind(c *gin.Context) {
	var payload kindPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	kind, err := h.svc.SaveKind(requestContext(c), requestActor(c), payload.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, kind)
}

// DeleteKind removes an asset kind that no asset references.
func (h *CatalogHandler) DeleteKind(c *gin.Context) {
	if err := h.svc.DeleteKind(requestContext(c), requestActor(c), c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

type folderPayload struct {
	ID       string  `json:"id" validate:"omitempty,nodeid"`
	Name     string  `json:"name" validate:"required,max=128"`
	ParentID *string `json:"parent_id" validate:"omitempty,nodeid"`
	Module   string  `json:"module" validate:"omitempty,module"`
	Icon     string  `json:"icon" validate:"max=16"`
	Ordering *int    `json:"ordering"`
}

func (p folderPayload) toInput() services.FolderInput {
	return services.FolderInput{
		ID:       p.ID,
		Name:     p.Name,
		ParentID: p.ParentID,
		Module:   p.Module,
		Icon:     p.Icon,
		Ordering: p.Ordering,
	}
}

type kindPayload struct {
	Name       string  `json:"name" validate:"required,max=128"`
	Module     string  `json:"module" validate:"omitempty,module"`
	Icon       string  `json:"icon" validate:"max=16"`
	ParentName *string `json:"parent_name" validate:"omitempty,max=128"`
}

func (p kindPayload) toInput() services.KindInput {
	return services.KindInput{
		Name:       p.Name,
		Module:     p.Module,
		Icon:       p.Icon,
		ParentName: p.ParentName,
	}
}
