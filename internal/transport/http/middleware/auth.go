package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	coreauth "conectar-users/internal/core/auth"
	"conectar-users/internal/service"
	resp "conectar-users/internal/transport/http/response"
)

const keyIdentity = "identity"

// IdentityResolver turns a parsed credential into the current identity.
// *service.AuthService satisfies it.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, claims *coreauth.Claims) (service.Identity, error)
}

// Auth rejects requests without a valid bearer credential, then
// re-resolves the asserted identity against the store so role changes
// and deletions take effect immediately.
func Auth(jwter *coreauth.JWTer, resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := jwter.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		ident, err := resolver.ResolveIdentity(c.Request.Context(), claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.FromError(err))
			return
		}
		c.Set(keyIdentity, ident)
		c.Next()
	}
}

// Require gates a route on a static capability (no target resource);
// ownership-scoped capabilities are decided inside the service.
func Require(capability service.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := GetIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "unauthorized"))
			return
		}
		if !service.Allow(capability, ident, 0) {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Next()
	}
}

func GetIdentity(c *gin.Context) (service.Identity, bool) {
	v, ok := c.Get(keyIdentity)
	if !ok {
		return service.Identity{}, false
	}
	ident, ok := v.(service.Identity)
	return ident, ok
}
