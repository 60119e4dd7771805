package dto

import "github.com/bings/visallo/internal/ingest"

// ImportRowsRequest carries a mapping and the raw rows to import into a
// workspace sandbox.
type ImportRowsRequest struct {
	SourceName string               `json:"sourceName"`
	Mapping    ingest.VertexMapping `json:"mapping" binding:"required"`
	Rows       [][]string           `json:"rows" binding:"required,min=1"`
}

// ImportRowsResponse reports what an import batch produced.
type ImportRowsResponse struct {
	VerticesCreated int      `json:"verticesCreated"`
	RowsSkipped     int      `json:"rowsSkipped"`
	SkippedReasons  []string `json:"skippedReasons,omitempty"`
}

// ToImportRowsResponse converts an ingest result to DTO.
func ToImportRowsResponse(r ingest.Result) ImportRowsResponse {
	return ImportRowsResponse{
		VerticesCreated: r.VerticesCreated,
		RowsSkipped:     r.RowsSkipped,
		SkippedReasons:  r.SkippedReasons,
	}
}
