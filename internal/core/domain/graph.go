package domain

// ElementType discriminates the two kinds of graph elements.
type ElementType string

const (
	ElementTypeVertex ElementType = "vertex"
	ElementTypeEdge   ElementType = "edge"
)

// ElementRef identifies a graph element by type and id.
type ElementRef struct {
	Type ElementType `json:"type"`
	ID   string      `json:"id"`
}

// Metadata is free-form metadata attached to a property revision.
type Metadata map[string]any

// Well-known metadata keys.
const (
	MetadataKeyJustification = "justification"
	MetadataKeyModifiedBy    = "modifiedBy"
	MetadataKeyModifiedDate  = "modifiedDate"
)

// Clone returns a shallow copy so callers can amend metadata without aliasing
// the stored revision.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Property is one live revision of a multi-valued property, identified by
// (key, name) within its element. The same (key, name) pair may carry both a
// public revision and a workspace-scoped revision; the visibility label tells
// them apart.
type Property struct {
	Key        string          `json:"key"`
	Name       string          `json:"name"`
	Value      any             `json:"value"`
	Visibility VisibilityLabel `json:"visibility"`
	Metadata   Metadata        `json:"metadata,omitempty"`
}

// Vertex is a graph vertex together with the property revisions visible to the
// reader that fetched it.
type Vertex struct {
	ID         string          `json:"id"`
	Visibility VisibilityLabel `json:"visibility"`
	Properties []Property      `json:"properties"`
}

// Ref returns the element reference for the vertex.
func (v *Vertex) Ref() ElementRef {
	return ElementRef{Type: ElementTypeVertex, ID: v.ID}
}

// Edge is a directed, labeled graph edge together with its visible property
// revisions.
type Edge struct {
	ID          string          `json:"id"`
	OutVertexID string          `json:"outVertexID"`
	InVertexID  string          `json:"inVertexID"`
	Label       string          `json:"label"`
	Visibility  VisibilityLabel `json:"visibility"`
	Properties  []Property      `json:"properties"`
}

// Ref returns the element reference for the edge.
func (e *Edge) Ref() ElementRef {
	return ElementRef{Type: ElementTypeEdge, ID: e.ID}
}

// PropertiesByKeyName returns every revision of the (key, name) property, in the
// order they appear on the element.
func PropertiesByKeyName(properties []Property, key, name string) []Property {
	var out []Property
	for _, p := range properties {
		if p.Key == key && p.Name == name {
			out = append(out, p)
		}
	}
	return out
}
