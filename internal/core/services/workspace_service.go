package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bings/visallo/internal/apperrors"
	"github.com/bings/visallo/internal/core/domain"
	portsrepo "github.com/bings/visallo/internal/core/ports/repositories"
	portssvc "github.com/bings/visallo/internal/core/ports/services"
	"github.com/google/uuid"
)

// workspaceService implements the WorkspaceSvcFacade interface. It owns the
// workspace aggregate: the workspace row, the membership relation, the content
// relation, and the graph authorization scope that makes sandboxed values
// readable.
type workspaceService struct {
	BaseService
	workspaceRepo portsrepo.WorkspaceRepositoryFacade
	graphAuthRepo portsrepo.GraphAuthorizationRepository
}

// NewWorkspaceService creates a new workspace service with the provided dependencies
func NewWorkspaceService(
	workspaceRepo portsrepo.WorkspaceRepositoryFacade,
	graphAuthRepo portsrepo.GraphAuthorizationRepository,
) portssvc.WorkspaceSvcFacade {
	return &workspaceService{
		workspaceRepo: workspaceRepo,
		graphAuthRepo: graphAuthRepo,
	}
}

// Ensure workspaceService implements the WorkspaceSvcFacade interface
var _ portssvc.WorkspaceSvcFacade = (*workspaceService)(nil)

// AddWorkspace creates a workspace owned by ownerUserID. The sequence is
// two-phase: the workspace row exists before its id is registered as a graph
// authorization, so nobody but the creator can reach it in between. A failure in
// the second phase tears the row down again so no unreachable ghost workspace
// survives a partial create.
func (s *workspaceService) AddWorkspace(ctx context.Context, displayTitle, ownerUserID string) (*domain.Workspace, error) {
	now := time.Now()
	workspaceID := domain.WorkspaceIDPrefix + uuid.NewString()

	workspace := domain.Workspace{
		WorkspaceID:   workspaceID,
		DisplayTitle:  displayTitle,
		CreatorUserID: ownerUserID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerUserID,
		},
	}

	if err := s.workspaceRepo.SaveWorkspace(ctx, workspace); err != nil {
		s.LogError(ctx, err, "Failed to save workspace",
			slog.String("workspace_id", workspaceID))
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	if err := s.graphAuthRepo.RegisterAuthorization(ctx, workspaceID); err != nil {
		s.LogError(ctx, err, "Failed to register workspace authorization, rolling back workspace",
			slog.String("workspace_id", workspaceID))
		s.cleanupPartialWorkspace(ctx, workspaceID, false)
		return nil, fmt.Errorf("failed to register workspace authorization: %w", err)
	}

	membership := domain.WorkspaceUser{
		WorkspaceID: workspaceID,
		UserID:      ownerUserID,
		Access:      domain.AccessWrite,
		IsCreator:   true,
		JoinedAt:    now,
	}
	if _, err := s.workspaceRepo.UpsertWorkspaceUser(ctx, membership); err != nil {
		s.LogError(ctx, err, "Failed to add creator membership, rolling back workspace",
			slog.String("workspace_id", workspaceID),
			slog.String("user_id", ownerUserID))
		s.cleanupPartialWorkspace(ctx, workspaceID, true)
		return nil, fmt.Errorf("failed to add creator to workspace: %w", err)
	}

	s.LogInfo(ctx, "Workspace created successfully",
		slog.String("workspace_id", workspaceID),
		slog.String("owner_user_id", ownerUserID))
	return &workspace, nil
}

// cleanupPartialWorkspace undoes the steps of AddWorkspace that completed before
// a later step failed. Cleanup failures are logged, not returned: the caller
// already has the original error.
func (s *workspaceService) cleanupPartialWorkspace(ctx context.Context, workspaceID string, unregisterAuth bool) {
	if unregisterAuth {
		if err := s.graphAuthRepo.UnregisterAuthorization(ctx, workspaceID); err != nil {
			s.LogError(ctx, err, "Failed to unregister authorization during workspace cleanup",
				slog.String("workspace_id", workspaceID))
		}
	}
	if err := s.workspaceRepo.DeleteWorkspace(ctx, workspaceID); err != nil {
		s.LogError(ctx, err, "Failed to delete workspace row during cleanup",
			slog.String("workspace_id", workspaceID))
	}
}

// FindWorkspaceByID retrieves a workspace on behalf of userID. A user without a
// membership gets ErrNotFound rather than a permission error, preserving
// existence privacy.
func (s *workspaceService) FindWorkspaceByID(ctx context.Context, workspaceID, userID string) (*domain.Workspace, error) {
	if _, err := s.workspaceRepo.FindWorkspaceUser(ctx, workspaceID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to check workspace membership",
			slog.String("workspace_id", workspaceID),
			slog.String("user_id", userID))
		return nil, err
	}

	workspace, err := s.workspaceRepo.FindWorkspaceByID(ctx, workspaceID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find workspace by ID",
				slog.String("workspace_id", workspaceID))
		}
		return nil, err
	}
	return workspace, nil
}

// ListUserWorkspaces retrieves all workspaces the user holds a membership in.
func (s *workspaceService) ListUserWorkspaces(ctx context.Context, userID string) ([]domain.Workspace, error) {
	workspaces, err := s.workspaceRepo.ListWorkspacesByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list workspaces for user",
			slog.String("user_id", userID))
		return nil, err
	}
	if workspaces == nil {
		return []domain.Workspace{}, nil
	}

	s.LogDebug(ctx, "Workspaces listed successfully",
		slog.Int("count", len(workspaces)),
		slog.String("user_id", userID))
	return workspaces, nil
}

// ListUsersWithAccess retrieves all memberships of a workspace. The acting user
// must itself hold at least READ access.
func (s *workspaceService) ListUsersWithAccess(ctx context.Context, workspaceID, actingUserID string) ([]domain.WorkspaceUser, error) {
	if err := s.RequireAccess(ctx, workspaceID, actingUserID, domain.AccessRead); err != nil {
		return nil, err
	}
	users, err := s.workspaceRepo.ListWorkspaceUsers(ctx, workspaceID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list workspace users",
			slog.String("workspace_id", workspaceID))
		return nil, err
	}
	return users, nil
}

// UpdateUserOnWorkspace grants or changes targetUserID's access level. The
// acting user must hold WRITE access or own the workspace. The result reports
// whether a new membership row was created (ADD) or an existing one changed
// (UPDATE).
func (s *workspaceService) UpdateUserOnWorkspace(ctx context.Context, workspaceID, targetUserID string, access domain.WorkspaceAccess, actingUserID string) (domain.UpdateUserOnWorkspaceResult, error) {
	if access != domain.AccessRead && access != domain.AccessWrite {
		return "", apperrors.NewValidationFailedError(fmt.Sprintf("invalid workspace access %q", access))
	}

	if err := s.RequireAccess(ctx, workspaceID, actingUserID, domain.AccessWrite); err != nil {
		return "", err
	}

	membership := domain.WorkspaceUser{
		WorkspaceID: workspaceID,
		UserID:      targetUserID,
		Access:      access,
		JoinedAt:    time.Now(),
	}
	created, err := s.workspaceRepo.UpsertWorkspaceUser(ctx, membership)
	if err != nil {
		s.LogError(ctx, err, "Failed to upsert workspace membership",
			slog.String("workspace_id", workspaceID),
			slog.String("target_user_id", targetUserID))
		return "", fmt.Errorf("failed to update user %s on workspace %s: %w", targetUserID, workspaceID, err)
	}

	result := domain.UpdateUserOnWorkspaceResultUpdate
	if created {
		result = domain.UpdateUserOnWorkspaceResultAdd
	}
	s.LogInfo(ctx, "Workspace membership updated",
		slog.String("workspace_id", workspaceID),
		slog.String("target_user_id", targetUserID),
		slog.String("access", string(access)),
		slog.String("result", string(result)))
	return result, nil
}

// DeleteUserFromWorkspace removes targetUserID's membership. The acting user
// must hold WRITE access or own the workspace; users may always remove
// themselves.
func (s *workspaceService) DeleteUserFromWorkspace(ctx context.Context, workspaceID, targetUserID, actingUserID string) error {
	if actingUserID != targetUserID {
		if err := s.RequireAccess(ctx, workspaceID, actingUserID, domain.AccessWrite); err != nil {
			return err
		}
	}

	if err := s.workspaceRepo.DeleteWorkspaceUser(ctx, workspaceID, targetUserID); err != nil {
		s.LogError(ctx, err, "Failed to delete workspace membership",
			slog.String("workspace_id", workspaceID),
			slog.String("target_user_id", targetUserID))
		return err
	}

	s.LogInfo(ctx, "User removed from workspace",
		slog.String("workspace_id", workspaceID),
		slog.String("target_user_id", targetUserID),
		slog.String("acting_user_id", actingUserID))
	return nil
}

// DeleteWorkspace removes the workspace together with its membership and content
// rows, then unregisters the workspace's graph authorization. Owner only. Rows
// go before the workspace row itself so no dangling reference can survive.
func (s *workspaceService) DeleteWorkspace(ctx context.Context, workspaceID, actingUserID string) error {
	if err := s.RequireOwner(ctx, workspaceID, actingUserID); err != nil {
		return err
	}

	if err := s.workspaceRepo.DeleteWorkspace(ctx, workspaceID); err != nil {
		s.LogError(ctx, err, "Failed to delete workspace",
			slog.String("workspace_id", workspaceID))
		return err
	}
	if err := s.graphAuthRepo.UnregisterAuthorization(ctx, workspaceID); err != nil {
		s.LogError(ctx, err, "Failed to unregister workspace authorization",
			slog.String("workspace_id", workspaceID))
		return fmt.Errorf("workspace deleted but authorization cleanup failed: %w", err)
	}

	s.LogInfo(ctx, "Workspace deleted",
		slog.String("workspace_id", workspaceID),
		slog.String("acting_user_id", actingUserID))
	return nil
}

// TrackEntity records that a workspace-scoped mutation touched the element.
func (s *workspaceService) TrackEntity(ctx context.Context, workspaceID string, ref domain.ElementRef) error {
	entity := domain.WorkspaceEntity{
		WorkspaceID: workspaceID,
		ElementType: ref.Type,
		ElementID:   ref.ID,
		CreatedAt:   time.Now(),
	}
	if err := s.workspaceRepo.UpsertWorkspaceEntity(ctx, entity); err != nil {
		s.LogError(ctx, err, "Failed to track workspace entity",
			slog.String("workspace_id", workspaceID),
			slog.String("element_id", ref.ID))
		return err
	}
	return nil
}

// RequireAccess fails with an AccessDeniedError naming the acting user and the
// workspace unless the user owns the workspace or holds at least the required
// access level. A workspace that does not exist at all yields ErrNotFound.
func (s *workspaceService) RequireAccess(ctx context.Context, workspaceID, userID string, required domain.WorkspaceAccess) error {
	workspace, err := s.workspaceRepo.FindWorkspaceByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to load workspace for access check",
			slog.String("workspace_id", workspaceID))
		return fmt.Errorf("failed to check authorization: %w", err)
	}
	if workspace.CreatorUserID == userID {
		return nil
	}

	membership, err := s.workspaceRepo.FindWorkspaceUser(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, "Access denied: user is not a member of workspace",
				slog.String("user_id", userID),
				slog.String("workspace_id", workspaceID))
			return apperrors.NewAccessDeniedError(userID, workspaceID, "user is not a member of this workspace")
		}
		s.LogError(ctx, err, "Failed to check workspace membership",
			slog.String("user_id", userID),
			slog.String("workspace_id", workspaceID))
		return fmt.Errorf("failed to check authorization: %w", err)
	}

	if !membership.Access.Satisfies(required) {
		s.LogWarn(ctx, "Access denied: user lacks required access level",
			slog.String("user_id", userID),
			slog.String("workspace_id", workspaceID),
			slog.String("user_access", string(membership.Access)),
			slog.String("required_access", string(required)))
		return apperrors.NewAccessDeniedError(userID, workspaceID,
			fmt.Sprintf("requires %s access", required))
	}
	return nil
}

// RequireOwner fails with an AccessDeniedError unless the user owns the workspace.
func (s *workspaceService) RequireOwner(ctx context.Context, workspaceID, userID string) error {
	workspace, err := s.workspaceRepo.FindWorkspaceByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to load workspace for owner check",
			slog.String("workspace_id", workspaceID))
		return fmt.Errorf("failed to check authorization: %w", err)
	}
	if workspace.CreatorUserID != userID {
		s.LogWarn(ctx, "Access denied: user is not the workspace owner",
			slog.String("user_id", userID),
			slog.String("workspace_id", workspaceID))
		return apperrors.NewAccessDeniedError(userID, workspaceID, "only the workspace owner may perform this operation")
	}
	return nil
}
