package handlers

import (
	"net/http"

	"github.com/bings/visallo/internal/dto"
	"github.com/bings/visallo/internal/ingest"
	"github.com/bings/visallo/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ingestHandler imports mapped tabular rows into a workspace sandbox.
type ingestHandler struct {
	importer *ingest.Importer
}

// registerIngestRoutes registers the import route under a workspace group.
func registerIngestRoutes(workspace *gin.RouterGroup, importer *ingest.Importer) {
	h := &ingestHandler{importer: importer}
	workspace.POST("/import", h.importRows)
}

// importRows godoc
// @Summary Import rows into a workspace
// @Description Maps raw rows onto sandboxed vertices. Undecodable rows are skipped and reported. Requires WRITE access.
// @Tags ingest
// @Accept json
// @Produce json
// @Param workspace_id path string true "Workspace ID"
// @Param import body dto.ImportRowsRequest true "Mapping and rows"
// @Success 200 {object} dto.ImportRowsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/import [post]
func (h *ingestHandler) importRows(c *gin.Context) {
	var req dto.ImportRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	result, err := h.importer.ImportRows(c.Request.Context(), req.Mapping, req.Rows, c.Param("workspace_id"), userID, req.SourceName)
	if err != nil {
		respondServiceError(c, err, "Failed to import rows")
		return
	}
	c.JSON(http.StatusOK, dto.ToImportRowsResponse(result))
}
