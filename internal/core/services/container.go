package services

import (
	portsrepo "github.com/bings/visallo/internal/core/ports/repositories"
	portssvc "github.com/bings/visallo/internal/core/ports/services"
	"github.com/bings/visallo/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Workspace service first; publish and content tracking depend on it.
	container.Workspace = NewWorkspaceService(repos.WorkspaceRepo, repos.GraphRepo)
	container.Publish = NewPublishService(repos.GraphRepo)
	container.User = NewUserService(repos.UserRepo)
	container.Token = NewTokenService(cfg, container.User)
	container.GoogleAuth = NewGoogleAuthService(cfg)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.WorkspaceSvcFacade = (*workspaceService)(nil)
	_ portssvc.PublishSvcFacade   = (*publishService)(nil)
)
