package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/projecthub/pkg/response"
)

// RequireAdmin gates routes that only admins may call.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := UserFromContext(c)
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, "Authentication required", nil)
			return
		}
		if !user.IsAdmin() {
			response.AbortError(c, http.StatusForbidden, "Admin access required", nil)
			return
		}
		c.Next()
	}
}

// MemberOrAdmin records whether the requester's role already grants
// blanket access. Role is knowable before the resource is fetched;
// ownership is not, so the per-resource check happens later with this
// flag short-circuiting it for admins.
func MemberOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := UserFromContext(c)
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, "Authentication required", nil)
			return
		}
		c.Set(CtxPrivilegedKey, user.IsAdmin())
		c.Next()
	}
}

// Privileged reports the flag set by MemberOrAdmin.
func Privileged(c *gin.Context) bool {
	return c.GetBool(CtxPrivilegedKey)
}
