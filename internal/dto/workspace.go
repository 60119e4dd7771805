package dto

import (
	"time"

	"github.com/bings/visallo/internal/core/domain"
)

// --- Workspace DTOs ---

// CreateWorkspaceRequest defines data for creating a new workspace.
type CreateWorkspaceRequest struct {
	Title string `json:"title" binding:"required"`
}

// WorkspaceResponse defines data returned for a workspace.
type WorkspaceResponse struct {
	WorkspaceID   string    `json:"workspaceID"`
	Title         string    `json:"title"`
	CreatorUserID string    `json:"creatorUserID"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID
}

// ToWorkspaceResponse converts domain.Workspace to DTO.
func ToWorkspaceResponse(w *domain.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		WorkspaceID:   w.WorkspaceID,
		Title:         w.DisplayTitle,
		CreatorUserID: w.CreatorUserID,
		CreatedAt:     w.CreatedAt,
		CreatedBy:     w.CreatedBy,
		LastUpdatedAt: w.LastUpdatedAt,
		LastUpdatedBy: w.LastUpdatedBy,
	}
}

// ListWorkspacesResponse wraps a list of workspaces.
type ListWorkspacesResponse struct {
	Workspaces []WorkspaceResponse `json:"workspaces"`
}

// ToListWorkspacesResponse converts a slice of domain.Workspace to DTO.
func ToListWorkspacesResponse(ws []domain.Workspace) ListWorkspacesResponse {
	list := make([]WorkspaceResponse, len(ws))
	for i, w := range ws {
		list[i] = ToWorkspaceResponse(&w)
	}
	return ListWorkspacesResponse{Workspaces: list}
}

// --- Workspace Membership DTOs ---

// UpdateUserOnWorkspaceRequest grants or changes a user's access on a workspace.
type UpdateUserOnWorkspaceRequest struct {
	UserID string                 `json:"userID" binding:"required"`
	Access domain.WorkspaceAccess `json:"access" binding:"required,workspaceaccess"`
}

// WorkspaceUserResponse defines data returned about a user's membership.
type WorkspaceUserResponse struct {
	UserID      string                 `json:"userID"`
	WorkspaceID string                 `json:"workspaceID"`
	Access      domain.WorkspaceAccess `json:"access"`
	IsCreator   bool                   `json:"isCreator"`
	JoinedAt    time.Time              `json:"joinedAt"`
}

// ToWorkspaceUserResponse converts domain.WorkspaceUser to DTO.
func ToWorkspaceUserResponse(wu *domain.WorkspaceUser) WorkspaceUserResponse {
	return WorkspaceUserResponse{
		UserID:      wu.UserID,
		WorkspaceID: wu.WorkspaceID,
		Access:      wu.Access,
		IsCreator:   wu.IsCreator,
		JoinedAt:    wu.JoinedAt,
	}
}

// UpdateUserOnWorkspaceResponse reports whether the grant was created or changed.
type UpdateUserOnWorkspaceResponse struct {
	Result     domain.UpdateUserOnWorkspaceResult `json:"result"`
	Membership WorkspaceUserResponse              `json:"membership"`
}

// ListWorkspaceUsersResponse wraps the memberships of a workspace.
type ListWorkspaceUsersResponse struct {
	Users []WorkspaceUserResponse `json:"users"`
}

// ToListWorkspaceUsersResponse converts a slice of domain.WorkspaceUser to DTO.
func ToListWorkspaceUsersResponse(wus []domain.WorkspaceUser) ListWorkspaceUsersResponse {
	list := make([]WorkspaceUserResponse, len(wus))
	for i, wu := range wus {
		list[i] = ToWorkspaceUserResponse(&wu)
	}
	return ListWorkspaceUsersResponse{Users: list}
}
