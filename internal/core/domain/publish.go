package domain

import "fmt"

// PublishAction is the intended effect of a publish item.
type PublishAction string

const (
	PublishActionAddOrUpdate PublishAction = "ADD_OR_UPDATE"
	PublishActionDelete      PublishAction = "DELETE"
)

// PublishItemType tells which kind of change a publish item promotes.
type PublishItemType string

const (
	PublishItemTypeVertex   PublishItemType = "vertex"
	PublishItemTypeEdge     PublishItemType = "edge"
	PublishItemTypeProperty PublishItemType = "property"
)

// PublishItem is one entry of a publish batch: a sandboxed vertex, edge, or
// property change to promote to public visibility. Property-scoped items carry a
// key and name; element-scoped items leave them empty. Exactly one of VertexID
// and EdgeID is set.
type PublishItem struct {
	Type     PublishItemType `json:"type" binding:"required,oneof=vertex edge property"`
	Action   PublishAction   `json:"action" binding:"required,oneof=ADD_OR_UPDATE DELETE"`
	VertexID string          `json:"vertexId,omitempty"`
	EdgeID   string          `json:"edgeId,omitempty"`
	Key      string          `json:"key,omitempty"`
	Name     string          `json:"name,omitempty"`
}

// ElementRef resolves which graph element the item targets.
func (i PublishItem) ElementRef() (ElementRef, error) {
	switch {
	case i.VertexID != "" && i.EdgeID != "":
		return ElementRef{}, fmt.Errorf("publish item names both vertex %q and edge %q", i.VertexID, i.EdgeID)
	case i.VertexID != "":
		return ElementRef{Type: ElementTypeVertex, ID: i.VertexID}, nil
	case i.EdgeID != "":
		return ElementRef{Type: ElementTypeEdge, ID: i.EdgeID}, nil
	default:
		return ElementRef{}, fmt.Errorf("publish item names neither a vertex nor an edge")
	}
}

// Failure builds the failure record for this item with the given message.
func (i PublishItem) Failure(message string) PublishFailure {
	return PublishFailure{
		Type:         i.Type,
		Action:       i.Action,
		ErrorMessage: message,
		VertexID:     i.VertexID,
		EdgeID:       i.EdgeID,
		Key:          i.Key,
		Name:         i.Name,
	}
}

// PublishFailure reports why a single publish item was rejected. It carries the
// item's identifying coordinates so the caller can correlate it with the request.
type PublishFailure struct {
	Type         PublishItemType `json:"type"`
	Action       PublishAction   `json:"action"`
	ErrorMessage string          `json:"errorMessage"`
	VertexID     string          `json:"vertexId,omitempty"`
	EdgeID       string          `json:"edgeId,omitempty"`
	Key          string          `json:"key,omitempty"`
	Name         string          `json:"name,omitempty"`
}

// PublishResponse aggregates the per-item outcomes of a publish batch. An empty
// failure list means every item was applied.
type PublishResponse struct {
	Failures []PublishFailure `json:"failures"`
}

// Success reports whether every item in the batch was applied.
func (r PublishResponse) Success() bool {
	return len(r.Failures) == 0
}
