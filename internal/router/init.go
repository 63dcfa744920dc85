package router

import (
	"github.com/oksasatya/projecthub/internal/application"
	"github.com/oksasatya/projecthub/internal/container"
	"github.com/oksasatya/projecthub/internal/infrastructure/mongodb"
	"github.com/oksasatya/projecthub/internal/router/modules"
)

// InitModules builds the services from container singletons and
// registers every feature module. Called once during startup.
func InitModules(r *Registry) {
	db := container.GetMongo()

	users := mongodb.NewUserRepository(db)
	projects := mongodb.NewProjectRepository(db)

	authSvc := application.NewAuthService(users, container.GetJWT(), container.GetLogger(), container.GetRabbitPub())
	projectSvc := application.NewProjectService(projects, container.GetLogger(), container.GetES(), container.GetConfig().ESProjectsIndex)

	r.Add(modules.NewHealthModule())
	r.Add(modules.NewAuthModule(authSvc))
	r.Add(modules.NewProjectModule(projectSvc, authSvc))
	r.Add(modules.NewUserModule(authSvc))
}
