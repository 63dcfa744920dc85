package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/projecthub/internal/domain/entity"
	"github.com/oksasatya/projecthub/pkg/helpers"
	"github.com/oksasatya/projecthub/pkg/response"
)

// Context keys set by the auth and role middleware.
const (
	CtxUserKey       = "authUser"
	CtxTokenKey      = "authToken"
	CtxPrivilegedKey = "privileged"
)

// Verifier is the slice of AuthService the middleware needs.
type Verifier interface {
	VerifyToken(token string) (*helpers.Claims, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
}

// Auth requires a valid bearer token and resolves it to a live user.
// Each step is a hard gate: missing header, failed verification, or a
// deleted user all end the request with 401. On success the user and
// raw token are attached to the context for downstream handlers.
func Auth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.AbortError(c, http.StatusUnauthorized, "No token provided", nil)
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		claims, err := v.VerifyToken(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, err.Error(), nil)
			return
		}

		user, err := v.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			// Token was valid but the account no longer exists.
			response.AbortError(c, http.StatusUnauthorized, err.Error(), nil)
			return
		}

		c.Set(CtxUserKey, user)
		c.Set(CtxTokenKey, token)
		c.Next()
	}
}

// UserFromContext returns the authenticated user attached by Auth.
func UserFromContext(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok
}
