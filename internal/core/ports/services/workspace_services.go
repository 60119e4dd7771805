package services

import (
	"context"

	"github.com/bings/visallo/internal/core/domain"
)

// WorkspaceReaderSvc defines read operations for workspace data.
type WorkspaceReaderSvc interface {
	// FindWorkspaceByID retrieves a workspace on behalf of a user. Users without
	// a membership get apperrors.ErrNotFound, never a permission error, so the
	// existence of other people's workspaces stays private.
	FindWorkspaceByID(ctx context.Context, workspaceID, userID string) (*domain.Workspace, error)

	// ListUserWorkspaces retrieves exactly the workspaces the user holds a
	// membership in, regardless of access level.
	ListUserWorkspaces(ctx context.Context, userID string) ([]domain.Workspace, error)

	// ListUsersWithAccess retrieves all memberships of a workspace. The acting
	// user must itself be a member.
	ListUsersWithAccess(ctx context.Context, workspaceID, actingUserID string) ([]domain.WorkspaceUser, error)
}

// WorkspaceWriterSvc defines lifecycle operations for workspaces.
type WorkspaceWriterSvc interface {
	// AddWorkspace creates a workspace owned by ownerUserID, registers the
	// workspace id as a graph authorization scope, and grants the owner an
	// implicit WRITE membership.
	AddWorkspace(ctx context.Context, displayTitle, ownerUserID string) (*domain.Workspace, error)

	// DeleteWorkspace removes the workspace and all of its membership and
	// content rows. Owner only.
	DeleteWorkspace(ctx context.Context, workspaceID, actingUserID string) error
}

// WorkspaceMembershipSvc defines operations on the workspace membership relation.
type WorkspaceMembershipSvc interface {
	// UpdateUserOnWorkspace grants targetUserID the given access level or
	// changes an existing grant. The acting user must hold WRITE access or own
	// the workspace. The result tells the caller whether a new grant was created.
	UpdateUserOnWorkspace(ctx context.Context, workspaceID, targetUserID string, access domain.WorkspaceAccess, actingUserID string) (domain.UpdateUserOnWorkspaceResult, error)

	// DeleteUserFromWorkspace removes targetUserID's membership. The acting user
	// must hold WRITE access or own the workspace; users may always remove
	// themselves.
	DeleteUserFromWorkspace(ctx context.Context, workspaceID, targetUserID, actingUserID string) error
}

// WorkspaceAuthorizerSvc gates workspace-mutating operations on access level.
type WorkspaceAuthorizerSvc interface {
	// RequireAccess fails with an AccessDeniedError naming the user and the
	// workspace unless the user holds at least the required access level.
	RequireAccess(ctx context.Context, workspaceID, userID string, required domain.WorkspaceAccess) error

	// RequireOwner fails with an AccessDeniedError unless the user owns the
	// workspace.
	RequireOwner(ctx context.Context, workspaceID, userID string) error
}

// WorkspaceContentSvc maintains the relation between a workspace and the graph
// elements it has been used to edit.
type WorkspaceContentSvc interface {
	// TrackEntity records that a workspace-scoped mutation touched the element.
	// Idempotent; called on first sandbox write.
	TrackEntity(ctx context.Context, workspaceID string, ref domain.ElementRef) error
}

// WorkspaceSvcFacade combines all workspace-related service interfaces.
type WorkspaceSvcFacade interface {
	WorkspaceReaderSvc
	WorkspaceWriterSvc
	WorkspaceMembershipSvc
	WorkspaceAuthorizerSvc
	WorkspaceContentSvc
}
