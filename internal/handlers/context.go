package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/assetmgr/assetmgr/internal/auditctx"
	"github.com/assetmgr/assetmgr/internal/middleware"
)

// requestContext returns the request context annotated with the caller for
// audit entries, with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}
	return auditctx.WithActor(c.Request.Context(), auditctx.Actor{
		Name:      requestActor(c),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}

// requestActor names the caller for audit entries. Empty means system.
func requestActor(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return ""
	}
	return strings.TrimSpace(c.GetHeader(middleware.ActorHeader))
}
