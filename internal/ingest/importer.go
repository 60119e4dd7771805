package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bings/visallo/internal/core/domain"
	portsrepo "github.com/bings/visallo/internal/core/ports/repositories"
	portssvc "github.com/bings/visallo/internal/core/ports/services"
	"github.com/bings/visallo/internal/middleware"
	"github.com/google/uuid"
)

// Importer turns mapped rows into sandboxed vertices. The acting user must hold
// WRITE access on the workspace; every created vertex is registered as workspace
// content so publish and cleanup can find it later.
type Importer struct {
	graphRepo  portsrepo.GraphRepositoryFacade
	authorizer portssvc.WorkspaceAuthorizerSvc
	content    portssvc.WorkspaceContentSvc
}

// NewImporter creates an importer over the graph storage collaborator and the
// workspace service.
func NewImporter(graphRepo portsrepo.GraphRepositoryFacade, authorizer portssvc.WorkspaceAuthorizerSvc, content portssvc.WorkspaceContentSvc) *Importer {
	return &Importer{graphRepo: graphRepo, authorizer: authorizer, content: content}
}

// Result summarizes one import batch.
type Result struct {
	VerticesCreated int      `json:"verticesCreated"`
	RowsSkipped     int      `json:"rowsSkipped"`
	SkippedReasons  []string `json:"skippedReasons,omitempty"`
}

// ImportRows applies the mapping to every row. Rows that fail to decode are
// skipped and reported; any other error aborts the batch. All writes carry a
// visibility label scoped to the workspace plus a source annotation naming the
// import, so ingested data stays private until published.
func (i *Importer) ImportRows(ctx context.Context, mapping VertexMapping, rows [][]string, workspaceID, actingUserID, sourceName string) (Result, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := i.authorizer.RequireAccess(ctx, workspaceID, actingUserID, domain.AccessWrite); err != nil {
		return Result{}, err
	}

	visibility, err := domain.NewSandboxVisibility(domain.VisibilityLabel{Source: sourceName}, workspaceID)
	if err != nil {
		return Result{}, err
	}

	result := Result{}
	now := time.Now()
	for rowIdx, row := range rows {
		vertex, err := i.buildVertex(mapping, row, visibility, actingUserID, now)
		if err != nil {
			if errors.Is(err, ErrSkipRow) {
				result.RowsSkipped++
				result.SkippedReasons = append(result.SkippedReasons, fmt.Sprintf("row %d: %v", rowIdx, err))
				continue
			}
			return result, fmt.Errorf("row %d: %w", rowIdx, err)
		}

		if err := i.graphRepo.SaveVertex(ctx, vertex); err != nil {
			return result, fmt.Errorf("row %d: failed to save vertex: %w", rowIdx, err)
		}
		if err := i.content.TrackEntity(ctx, workspaceID, vertex.Ref()); err != nil {
			return result, fmt.Errorf("row %d: failed to track entity: %w", rowIdx, err)
		}
		result.VerticesCreated++
	}

	if err := i.graphRepo.Flush(ctx); err != nil {
		return result, fmt.Errorf("failed to flush graph after import: %w", err)
	}

	logger.Info("Import completed",
		slog.String("workspace_id", workspaceID),
		slog.Int("vertices_created", result.VerticesCreated),
		slog.Int("rows_skipped", result.RowsSkipped))
	return result, nil
}

func (i *Importer) buildVertex(mapping VertexMapping, row []string, visibility domain.VisibilityLabel, actingUserID string, now time.Time) (domain.Vertex, error) {
	vertexID := ""
	if mapping.IDColumn >= 0 && mapping.IDColumn < len(row) {
		vertexID = row[mapping.IDColumn]
	}
	if vertexID == "" {
		vertexID = uuid.NewString()
	}

	vertex := domain.Vertex{
		ID:         vertexID,
		Visibility: visibility,
	}
	for _, pm := range mapping.Properties {
		value, err := pm.DecodeValue(row)
		if err != nil {
			return domain.Vertex{}, err
		}
		if value == nil {
			continue
		}
		key := pm.Key
		if key == "" {
			key = vertexID
		}
		vertex.Properties = append(vertex.Properties, domain.Property{
			Key:        key,
			Name:       pm.Name,
			Value:      value,
			Visibility: visibility,
			Metadata: domain.Metadata{
				domain.MetadataKeyModifiedBy:   actingUserID,
				domain.MetadataKeyModifiedDate: now,
			},
		})
	}
	return vertex, nil
}
