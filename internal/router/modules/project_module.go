package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/projecthub/internal/application"
	"github.com/oksasatya/projecthub/internal/container"
	handlers "github.com/oksasatya/projecthub/internal/interface/http"
	"github.com/oksasatya/projecthub/internal/interface/middleware"
)

// ProjectModule registers the bearer-gated project endpoints. Every
// route passes through Auth then MemberOrAdmin; ownership is enforced
// per-resource inside the service/handlers.
type ProjectModule struct {
	Handler *handlers.ProjectHandler
	Auth    *application.AuthService
}

func NewProjectModule(svc *application.ProjectService, auth *application.AuthService) *ProjectModule {
	return &ProjectModule{
		Handler: handlers.NewProjectHandler(svc, container.GetLogger()),
		Auth:    auth,
	}
}

func (m *ProjectModule) Register(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	projects.Use(middleware.Auth(m.Auth))
	projects.Use(middleware.MemberOrAdmin())
	projects.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUser(), nil),
	)
	{
		projects.POST("", m.Handler.Create)
		projects.GET("", m.Handler.List)
		projects.GET("/search", m.Handler.Search)
		projects.GET("/:id", m.Handler.Get)
		projects.PUT("/:id", m.Handler.Update)
		projects.DELETE("/:id", m.Handler.Delete)
	}
}
