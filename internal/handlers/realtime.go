package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/assetmgr/assetmgr/internal/realtime"
)

// RealtimeHandler upgrades clients to the event WebSocket.
type RealtimeHandler struct {
	hub *realtime.Hub
}

// NewRealtimeHandler constructs a realtime handler.
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Stream subscribes to ?streams (comma separated), defaulting to every stream.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	var streams []string
	for _, value := range strings.Split(c.Query("streams"), ",") {
		if value = strings.TrimSpace(value); value != "" {
			streams = append(streams, value)
		}
	}
	if len(streams) == 0 {
		streams = []string{realtime.StreamHierarchy, realtime.StreamAssets}
	}
	h.hub.Serve(streams, c.Writer, c.Request)
}
