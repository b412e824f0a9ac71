package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	HeaderTenantID  = "X-Tenant-ID"
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"

	ctxTenantID  = "tenant_id"
	ctxActorID   = "actor_id"
	ctxActorRole = "actor_role"
)

// Actor copies the caller identity headers into the gin context so handlers
// can read them without touching the request again.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxTenantID, c.GetHeader(HeaderTenantID))
		c.Set(ctxActorID, c.GetHeader(HeaderActorID))
		c.Set(ctxActorRole, c.GetHeader(HeaderActorRole))
		c.Next()
	}
}

func TenantID(c *gin.Context) string {
	return c.GetString(ctxTenantID)
}

func ActorID(c *gin.Context) string {
	return c.GetString(ctxActorID)
}

func ActorRole(c *gin.Context) string {
	return c.GetString(ctxActorRole)
}
