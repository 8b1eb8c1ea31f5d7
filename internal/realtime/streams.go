package realtime

import (
	"time"

	"github.com/assetmgr/assetmgr/internal/hierarchy"
	"github.com/assetmgr/assetmgr/internal/models"
	"github.com/assetmgr/assetmgr/internal/services"
)

// Streams clients can subscribe to.
const (
	StreamHierarchy = "hierarchy"
	StreamAssets    = "assets"
)

// Events published on the streams.
const (
	EventHierarchyRebuilt = "rebuilt"
	EventAssetCreated     = "created"
)

var allStreams = []string{StreamHierarchy, StreamAssets}

func knownStream(stream string) bool {
	for _, s := range allStreams {
		if s == stream {
			return true
		}
	}
	return false
}

// HierarchyEvent is the payload of a hierarchy rebuild.
type HierarchyEvent struct {
	BuiltAt time.Time        `json:"built_at"`
	Nodes   int              `json:"nodes"`
	Modules []string         `json:"modules"`
	Report  hierarchy.Report `json:"report"`
}

// AssetEvent is the payload of an asset creation.
type AssetEvent struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Module   string `json:"module"`
	Status   string `json:"status"`
	Location string `json:"location,omitempty"`
}

// Attach publishes hierarchy rebuilds and asset creations on the hub.
// Either service may be nil.
func (h *Hub) Attach(hier *services.HierarchyService, assets *services.AssetService) {
	if hier != nil {
		hier.Subscribe(func(snapshot *services.Snapshot) {
			h.Broadcast(StreamHierarchy, Message{
				Event: EventHierarchyRebuilt,
				Data: HierarchyEvent{
					BuiltAt: snapshot.BuiltAt,
					Nodes:   snapshot.Manager.Len(),
					Modules: snapshot.Manager.Modules(),
					Report:  snapshot.Report,
				},
			})
		})
	}
	if assets != nil {
		assets.OnCreate(func(asset *models.Asset) {
			h.Broadcast(StreamAssets, Message{
				Event: EventAssetCreated,
				Data: AssetEvent{
					ID:       asset.ID,
					Type:     asset.Type,
					Module:   asset.Category,
					Status:   asset.Status,
					Location: asset.Location,
				},
			})
		})
	}
}
