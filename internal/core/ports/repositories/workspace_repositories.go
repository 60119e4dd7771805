package repositories

import (
	"context"

	"github.com/bings/visallo/internal/core/domain"
)

// WorkspaceReader defines read operations for workspaces and their memberships.
type WorkspaceReader interface {
	FindWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error)
	ListWorkspacesByUserID(ctx context.Context, userID string) ([]domain.Workspace, error)
	FindWorkspaceUser(ctx context.Context, workspaceID, userID string) (*domain.WorkspaceUser, error)
	ListWorkspaceUsers(ctx context.Context, workspaceID string) ([]domain.WorkspaceUser, error)
	ListWorkspaceEntities(ctx context.Context, workspaceID string) ([]domain.WorkspaceEntity, error)
}

// WorkspaceWriter defines mutation operations for workspaces, the membership
// relation, and the content relation.
type WorkspaceWriter interface {
	SaveWorkspace(ctx context.Context, workspace domain.Workspace) error

	// UpsertWorkspaceUser creates or updates the (workspace, user) membership row
	// and reports whether a new row was created.
	UpsertWorkspaceUser(ctx context.Context, membership domain.WorkspaceUser) (created bool, err error)

	DeleteWorkspaceUser(ctx context.Context, workspaceID, userID string) error

	// UpsertWorkspaceEntity records that the workspace has been used to edit the
	// element. Idempotent.
	UpsertWorkspaceEntity(ctx context.Context, entity domain.WorkspaceEntity) error

	// DeleteWorkspace removes the workspace row together with all of its
	// membership and content rows.
	DeleteWorkspace(ctx context.Context, workspaceID string) error
}

// WorkspaceRepositoryFacade combines all workspace persistence operations.
type WorkspaceRepositoryFacade interface {
	WorkspaceReader
	WorkspaceWriter
}
