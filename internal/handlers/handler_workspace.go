package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/bings/visallo/internal/core/ports/services"
	"github.com/bings/visallo/internal/dto"
	"github.com/bings/visallo/internal/ingest"
	"github.com/bings/visallo/internal/middleware"
	"github.com/gin-gonic/gin"
)

// workspaceHandler handles HTTP requests related to workspaces.
type workspaceHandler struct {
	workspaceService portssvc.WorkspaceSvcFacade
}

// registerWorkspaceRoutes registers routes related to workspaces and their
// members, plus the publish and import routes nested under a workspace.
func registerWorkspaceRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, importer *ingest.Importer) {
	h := &workspaceHandler{workspaceService: services.Workspace}

	workspacesTopLevel := rg.Group("/workspaces")
	{
		workspacesTopLevel.POST("", h.createWorkspace)
		workspacesTopLevel.GET("", h.listUserWorkspaces)
	}

	workspaceSpecific := rg.Group("/workspaces/:workspace_id")
	{
		workspaceSpecific.GET("", h.getWorkspace)
		workspaceSpecific.DELETE("", h.deleteWorkspace)

		workspaceUsers := workspaceSpecific.Group("/users")
		{
			workspaceUsers.GET("", h.listWorkspaceUsers)
			workspaceUsers.PUT("", h.updateUserOnWorkspace)
			workspaceUsers.DELETE("/:user_id", h.deleteUserFromWorkspace)
		}

		registerPublishRoutes(workspaceSpecific, services)
		registerIngestRoutes(workspaceSpecific, importer)
	}
}

// createWorkspace godoc
// @Summary Create a new workspace
// @Description Creates a workspace sandbox owned by the caller. The caller receives WRITE access.
// @Tags workspaces
// @Accept json
// @Produce json
// @Param workspace body dto.CreateWorkspaceRequest true "Workspace details"
// @Success 201 {object} dto.WorkspaceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /workspaces [post]
func (h *workspaceHandler) createWorkspace(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	workspace, err := h.workspaceService.AddWorkspace(c.Request.Context(), req.Title, creatorUserID)
	if err != nil {
		respondServiceError(c, err, "Failed to create workspace")
		return
	}

	logger.Info("Workspace created", slog.String("workspace_id", workspace.WorkspaceID))
	c.JSON(http.StatusCreated, dto.ToWorkspaceResponse(workspace))
}

// listUserWorkspaces godoc
// @Summary List workspaces for current user
// @Description Retrieves the workspaces the authenticated user is a member of.
// @Tags workspaces
// @Produce json
// @Success 200 {object} dto.ListWorkspacesResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /workspaces [get]
func (h *workspaceHandler) listUserWorkspaces(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	workspaces, err := h.workspaceService.ListUserWorkspaces(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list workspaces")
		return
	}
	c.JSON(http.StatusOK, dto.ToListWorkspacesResponse(workspaces))
}

// getWorkspace godoc
// @Summary Get a workspace
// @Description Retrieves a workspace. Non-members get 404, never 403.
// @Tags workspaces
// @Produce json
// @Param workspace_id path string true "Workspace ID"
// @Success 200 {object} dto.WorkspaceResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /workspaces/{workspace_id} [get]
func (h *workspaceHandler) getWorkspace(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	workspace, err := h.workspaceService.FindWorkspaceByID(c.Request.Context(), c.Param("workspace_id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to load workspace")
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkspaceResponse(workspace))
}

// deleteWorkspace godoc
// @Summary Delete a workspace
// @Description Deletes a workspace with its memberships and content rows. Owner only.
// @Tags workspaces
// @Param workspace_id path string true "Workspace ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /workspaces/{workspace_id} [delete]
func (h *workspaceHandler) deleteWorkspace(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.workspaceService.DeleteWorkspace(c.Request.Context(), c.Param("workspace_id"), userID); err != nil {
		respondServiceError(c, err, "Failed to delete workspace")
		return
	}
	c.Status(http.StatusNoContent)
}

// listWorkspaceUsers godoc
// @Summary List workspace members
// @Description Retrieves all memberships of a workspace. The caller must be a member.
// @Tags workspaces
// @Produce json
// @Param workspace_id path string true "Workspace ID"
// @Success 200 {object} dto.ListWorkspaceUsersResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/users [get]
func (h *workspaceHandler) listWorkspaceUsers(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	memberships, err := h.workspaceService.ListUsersWithAccess(c.Request.Context(), c.Param("workspace_id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list workspace users")
		return
	}
	c.JSON(http.StatusOK, dto.ToListWorkspaceUsersResponse(memberships))
}

// updateUserOnWorkspace godoc
// @Summary Grant or change a user's access
// @Description Grants the target user access on the workspace or changes an existing grant. Requires WRITE access.
// @Tags workspaces
// @Accept json
// @Produce json
// @Param workspace_id path string true "Workspace ID"
// @Param membership body dto.UpdateUserOnWorkspaceRequest true "Target user and access level"
// @Success 200 {object} dto.UpdateUserOnWorkspaceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/users [put]
func (h *workspaceHandler) updateUserOnWorkspace(c *gin.Context) {
	var req dto.UpdateUserOnWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	workspaceID := c.Param("workspace_id")
	result, err := h.workspaceService.UpdateUserOnWorkspace(c.Request.Context(), workspaceID, req.UserID, req.Access, actingUserID)
	if err != nil {
		respondServiceError(c, err, "Failed to update user on workspace")
		return
	}

	membership, err := h.workspaceService.ListUsersWithAccess(c.Request.Context(), workspaceID, actingUserID)
	if err != nil {
		respondServiceError(c, err, "Failed to load updated membership")
		return
	}
	resp := dto.UpdateUserOnWorkspaceResponse{Result: result}
	for i := range membership {
		if membership[i].UserID == req.UserID {
			resp.Membership = dto.ToWorkspaceUserResponse(&membership[i])
			break
		}
	}
	c.JSON(http.StatusOK, resp)
}

// deleteUserFromWorkspace godoc
// @Summary Remove a user from a workspace
// @Description Removes the target user's membership. Requires WRITE access; users may always remove themselves.
// @Tags workspaces
// @Param workspace_id path string true "Workspace ID"
// @Param user_id path string true "Target user ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/users/{user_id} [delete]
func (h *workspaceHandler) deleteUserFromWorkspace(c *gin.Context) {
	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	err := h.workspaceService.DeleteUserFromWorkspace(c.Request.Context(), c.Param("workspace_id"), c.Param("user_id"), actingUserID)
	if err != nil {
		respondServiceError(c, err, "Failed to remove user from workspace")
		return
	}
	c.Status(http.StatusNoContent)
}
