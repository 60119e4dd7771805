package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bings/visallo/internal/core/domain"
	portssvc "github.com/bings/visallo/internal/core/ports/services"
	"github.com/bings/visallo/internal/dto"
	"github.com/bings/visallo/internal/middleware"
	"github.com/gin-gonic/gin"
)

// publishHandler promotes sandboxed workspace changes to public visibility.
type publishHandler struct {
	publishService portssvc.PublishSvcFacade
	authorizer     portssvc.WorkspaceAuthorizerSvc
}

// registerPublishRoutes registers the publish route under a workspace group.
func registerPublishRoutes(workspace *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &publishHandler{
		publishService: services.Publish,
		authorizer:     services.Workspace,
	}
	workspace.POST("/publish", h.publish)
}

// publish godoc
// @Summary Publish sandboxed changes
// @Description Promotes the listed sandboxed changes to public visibility. Items fail independently; failures are reported per item with HTTP 200. Requires WRITE access.
// @Tags publish
// @Accept json
// @Produce json
// @Param workspace_id path string true "Workspace ID"
// @Param batch body dto.PublishRequest true "Publish items"
// @Success 200 {object} dto.PublishResponseDTO
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/publish [post]
func (h *publishHandler) publish(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	workspaceID := c.Param("workspace_id")
	if err := h.authorizer.RequireAccess(c.Request.Context(), workspaceID, userID, domain.AccessWrite); err != nil {
		respondServiceError(c, err, "Failed to authorize publish")
		return
	}

	// The caller publishes with exactly the workspace's own authorization.
	auths := domain.NewAuthorizations(workspaceID)
	response, err := h.publishService.Publish(c.Request.Context(), req.Items, workspaceID, auths)
	if err != nil {
		respondServiceError(c, err, "Failed to publish")
		return
	}

	logger.Info("Publish handled",
		slog.String("workspace_id", workspaceID),
		slog.Int("failures", len(response.Failures)))
	c.JSON(http.StatusOK, dto.ToPublishResponse(response))
}
