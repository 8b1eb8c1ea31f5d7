package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/assetmgr/assetmgr/internal/hierarchy"
	"github.com/assetmgr/assetmgr/internal/services"
	apperrors "github.com/assetmgr/assetmgr/pkg/errors"
	"github.com/assetmgr/assetmgr/pkg/response"
	appValidator "github.com/assetmgr/assetmgr/pkg/validator"
)

// HierarchyHandler serves the navigation tree from the current snapshot.
type HierarchyHandler struct {
	svc *services.HierarchyService
}

// NewHierarchyHandler constructs a hierarchy handler.
func NewHierarchyHandler(svc *services.HierarchyService) *HierarchyHandler {
	return &HierarchyHandler{svc: svc}
}

type nodeDTO struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	ParentID   string             `json:"parent_id,omitempty"`
	Module     string             `json:"module"`
	Type       hierarchy.NodeType `json:"type"`
	Icon       string             `json:"icon"`
	Order      int                `json:"order"`
	ChildCount int                `json:"child_count"`
}

func toNodeDTO(node *hierarchy.Node) nodeDTO {
	return nodeDTO{
		ID:         node.ID,
		Name:       node.Name,
		ParentID:   node.ParentID,
		Module:     node.Module,
		Type:       node.Type,
		Icon:       node.DisplayIcon(),
		Order:      node.Order,
		ChildCount: len(node.Children),
	}
}

func toNodeDTOs(nodes []*hierarchy.Node) []nodeDTO {
	out := make([]nodeDTO, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, toNodeDTO(node))
	}
	return out
}

type snapshotDTO struct {
	BuiltAt   time.Time                 `json:"built_at"`
	Nodes     int                       `json:"nodes"`
	Modules   []string                  `json:"modules"`
	Report    hierarchy.Report          `json:"report"`
	Normalize hierarchy.NormalizeReport `json:"normalize"`
}

func toSnapshotDTO(snapshot *services.Snapshot) snapshotDTO {
	return snapshotDTO{
		BuiltAt:   snapshot.BuiltAt,
		Nodes:     snapshot.Manager.Len(),
		Modules:   snapshot.Manager.Modules(),
		Report:    snapshot.Report,
		Normalize: snapshot.Normalize,
	}
}

// Snapshot describes the snapshot currently served.
func (h *HierarchyHandler) Snapshot(c *gin.Context) {
	response.Success(c, http.StatusOK, toSnapshotDTO(h.svc.Current()))
}

// Tree returns the display tree of a module.
func (h *HierarchyHandler) Tree(c *gin.Context) {
	module := strings.TrimSpace(c.Param("module"))
	if !appValidator.IsModule(module) {
		response.Error(c, apperrors.NewBadRequest("invalid module name"))
		return
	}

	roots := h.svc.Current().Manager.ModuleTree(module)
	response.Success(c, http.StatusOK, gin.H{
		"module": module,
		"nodes":  hierarchy.DisplayTree(roots, 0),
	})
}

// Node returns a single node together with its direct children.
func (h *HierarchyHandler) Node(c *gin.Context) {
	id := c.Param("id")
	node, ok := h.svc.Current().Manager.Find(id)
	if !ok {
		response.Error(c, apperrors.NewNotFound("node", id))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"node":     toNodeDTO(node),
		"children": toNodeDTOs(node.Children),
	})
}

// Descendants lists the subtree below a node in pre-order.
func (h *HierarchyHandler) Descendants(c *gin.Context) {
	id := c.Param("id")
	manager := h.svc.Current().Manager
	if _, ok := manager.Find(id); !ok {
		response.Error(c, apperrors.NewNotFound("node", id))
		return
	}

	nodes := manager.Descendants(id, parseBoolQuery(c, "include_self", false))
	response.Success(c, http.StatusOK, toNodeDTOs(nodes))
}

// Rebuild forces a snapshot rebuild and returns its report.
func (h *HierarchyHandler) Rebuild(c *gin.Context) {
	snapshot, err := h.svc.Rebuild(requestContext(c))
	if err != nil {
		response.Error(c, apperrors.ErrUnavailable.WithInternal(err))
		return
	}
	response.Success(c, http.StatusOK, toSnapshotDTO(snapshot))
}
