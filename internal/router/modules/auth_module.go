package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/projecthub/internal/application"
	"github.com/oksasatya/projecthub/internal/container"
	handlers "github.com/oksasatya/projecthub/internal/interface/http"
	"github.com/oksasatya/projecthub/internal/interface/middleware"
)

// AuthModule registers the public authentication endpoints.
// POST /auth/register, POST /auth/login
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(svc *application.AuthService) *AuthModule {
	return &AuthModule{Handler: handlers.NewAuthHandler(svc, container.GetLogger())}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
}
