package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/projecthub/internal/application"
	"github.com/oksasatya/projecthub/internal/container"
	handlers "github.com/oksasatya/projecthub/internal/interface/http"
	"github.com/oksasatya/projecthub/internal/interface/middleware"
)

// UserModule registers admin-only user management.
// PUT /users/:id/role
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    *application.AuthService
}

func NewUserModule(svc *application.AuthService) *UserModule {
	return &UserModule{Handler: handlers.NewUserHandler(svc, container.GetLogger()), Auth: svc}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.Auth(m.Auth))
	users.Use(middleware.RequireAdmin())
	{
		users.PUT("/:id/role", m.Handler.ChangeRole)
	}
}
