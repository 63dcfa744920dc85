package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/projecthub/internal/interface/http"
)

// HealthModule registers the unauthenticated health probe.
type HealthModule struct{}

func NewHealthModule() *HealthModule { return &HealthModule{} }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", handlers.Health)
}
