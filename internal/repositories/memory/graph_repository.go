// Package memory provides in-memory implementations of the repository ports.
// They back the service-level tests and local development without a database;
// the pgsql package is the production implementation.
package memory

import (
	"context"
	"sync"

	"github.com/bings/visallo/internal/apperrors"
	"github.com/bings/visallo/internal/core/domain"
	portsrepo "github.com/bings/visallo/internal/core/ports/repositories"
)

type vertexRecord struct {
	visibility domain.VisibilityLabel
	properties []domain.Property
}

type edgeRecord struct {
	outVertexID string
	inVertexID  string
	label       string
	visibility  domain.VisibilityLabel
	properties  []domain.Property
}

// GraphRepository is a thread-safe in-memory graph store. Reads are filtered by
// the caller's authorizations: elements and property revisions whose labels the
// authorizations cannot see are absent from results, and lookups of invisible
// elements report not-found.
type GraphRepository struct {
	mu       sync.RWMutex
	vertices map[string]*vertexRecord
	edges    map[string]*edgeRecord
	auths    map[string]struct{}
}

// NewGraphRepository creates an empty in-memory graph store.
func NewGraphRepository() *GraphRepository {
	return &GraphRepository{
		vertices: make(map[string]*vertexRecord),
		edges:    make(map[string]*edgeRecord),
		auths:    make(map[string]struct{}),
	}
}

var _ portsrepo.GraphRepositoryFacade = (*GraphRepository)(nil)

// FindVertexByID returns the vertex with its property revisions filtered down to
// those the authorizations can see. An unknown or invisible vertex yields
// apperrors.ErrNotFound.
func (r *GraphRepository) FindVertexByID(ctx context.Context, vertexID string, auths domain.Authorizations) (*domain.Vertex, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.vertices[vertexID]
	if !ok || !rec.visibility.Visible(auths) {
		return nil, apperrors.NewNotFoundError("vertex " + vertexID + " not found")
	}
	return &domain.Vertex{
		ID:         vertexID,
		Visibility: rec.visibility,
		Properties: filterProperties(rec.properties, auths),
	}, nil
}

// FindEdgeByID returns the edge with its property revisions filtered down to
// those the authorizations can see. An unknown or invisible edge yields
// apperrors.ErrNotFound.
func (r *GraphRepository) FindEdgeByID(ctx context.Context, edgeID string, auths domain.Authorizations) (*domain.Edge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.edges[edgeID]
	if !ok || !rec.visibility.Visible(auths) {
		return nil, apperrors.NewNotFoundError("edge " + edgeID + " not found")
	}
	return &domain.Edge{
		ID:          edgeID,
		OutVertexID: rec.outVertexID,
		InVertexID:  rec.inVertexID,
		Label:       rec.label,
		Visibility:  rec.visibility,
		Properties:  filterProperties(rec.properties, auths),
	}, nil
}

// CountVertices reports how many vertices the authorizations can see.
func (r *GraphRepository) CountVertices(ctx context.Context, auths domain.Authorizations) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, rec := range r.vertices {
		if rec.visibility.Visible(auths) {
			count++
		}
	}
	return count, nil
}

// CountEdges reports how many edges the authorizations can see.
func (r *GraphRepository) CountEdges(ctx context.Context, auths domain.Authorizations) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, rec := range r.edges {
		if rec.visibility.Visible(auths) {
			count++
		}
	}
	return count, nil
}

// SaveVertex creates the vertex or replaces its visibility, then upserts every
// property revision it carries.
func (r *GraphRepository) SaveVertex(ctx context.Context, vertex domain.Vertex) error {
	if vertex.ID == "" {
		return apperrors.NewValidationFailedError("vertex id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.vertices[vertex.ID]
	if !ok {
		rec = &vertexRecord{}
		r.vertices[vertex.ID] = rec
	}
	rec.visibility = vertex.Visibility
	for _, p := range vertex.Properties {
		rec.properties = upsertProperty(rec.properties, p)
	}
	return nil
}

// SaveEdge creates the edge or replaces its visibility and endpoints, then
// upserts every property revision it carries.
func (r *GraphRepository) SaveEdge(ctx context.Context, edge domain.Edge) error {
	if edge.ID == "" {
		return apperrors.NewValidationFailedError("edge id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.edges[edge.ID]
	if !ok {
		rec = &edgeRecord{}
		r.edges[edge.ID] = rec
	}
	rec.outVertexID = edge.OutVertexID
	rec.inVertexID = edge.InVertexID
	rec.label = edge.Label
	rec.visibility = edge.Visibility
	for _, p := range edge.Properties {
		rec.properties = upsertProperty(rec.properties, p)
	}
	return nil
}

// SaveElementVisibility replaces the element's own visibility label.
func (r *GraphRepository) SaveElementVisibility(ctx context.Context, ref domain.ElementRef, visibility domain.VisibilityLabel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ref.Type {
	case domain.ElementTypeEdge:
		rec, ok := r.edges[ref.ID]
		if !ok {
			return apperrors.NewNotFoundError("edge " + ref.ID + " not found")
		}
		rec.visibility = visibility
	default:
		rec, ok := r.vertices[ref.ID]
		if !ok {
			return apperrors.NewNotFoundError("vertex " + ref.ID + " not found")
		}
		rec.visibility = visibility
	}
	return nil
}

// SetProperty upserts the revision at the property's (key, name, visibility)
// coordinate. Revisions under different visibility labels coexist.
func (r *GraphRepository) SetProperty(ctx context.Context, ref domain.ElementRef, property domain.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	props, err := r.elementProperties(ref)
	if err != nil {
		return err
	}
	*props = upsertProperty(*props, property)
	return nil
}

// DeleteProperty removes the revision carrying exactly the given visibility.
// Deleting a revision that does not exist is a no-op.
func (r *GraphRepository) DeleteProperty(ctx context.Context, ref domain.ElementRef, key, name string, visibility domain.VisibilityLabel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	props, err := r.elementProperties(ref)
	if err != nil {
		return err
	}
	kept := (*props)[:0]
	for _, p := range *props {
		if p.Key == key && p.Name == name && p.Visibility.Equal(visibility) {
			continue
		}
		kept = append(kept, p)
	}
	*props = kept
	return nil
}

// DeleteElement removes the element and all of its property revisions. Deleting
// a vertex also removes edges touching it.
func (r *GraphRepository) DeleteElement(ctx context.Context, ref domain.ElementRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ref.Type {
	case domain.ElementTypeEdge:
		delete(r.edges, ref.ID)
	default:
		delete(r.vertices, ref.ID)
		for id, rec := range r.edges {
			if rec.outVertexID == ref.ID || rec.inVertexID == ref.ID {
				delete(r.edges, id)
			}
		}
	}
	return nil
}

// Flush is a no-op: writes are immediately visible in memory.
func (r *GraphRepository) Flush(ctx context.Context) error {
	return nil
}

// RegisterAuthorization records a visibility scope with the store.
func (r *GraphRepository) RegisterAuthorization(ctx context.Context, scope string) error {
	if scope == "" {
		return apperrors.NewValidationFailedError("authorization scope is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auths[scope] = struct{}{}
	return nil
}

// UnregisterAuthorization removes a previously registered scope. Unknown scopes
// are a no-op.
func (r *GraphRepository) UnregisterAuthorization(ctx context.Context, scope string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.auths, scope)
	return nil
}

// ListAuthorizations returns every registered scope.
func (r *GraphRepository) ListAuthorizations(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.auths))
	for scope := range r.auths {
		out = append(out, scope)
	}
	return out, nil
}

// elementProperties returns a pointer to the element's revision slice. Callers
// must hold the write lock.
func (r *GraphRepository) elementProperties(ref domain.ElementRef) (*[]domain.Property, error) {
	switch ref.Type {
	case domain.ElementTypeEdge:
		rec, ok := r.edges[ref.ID]
		if !ok {
			return nil, apperrors.NewNotFoundError("edge " + ref.ID + " not found")
		}
		return &rec.properties, nil
	default:
		rec, ok := r.vertices[ref.ID]
		if !ok {
			return nil, apperrors.NewNotFoundError("vertex " + ref.ID + " not found")
		}
		return &rec.properties, nil
	}
}

func upsertProperty(properties []domain.Property, property domain.Property) []domain.Property {
	for i, p := range properties {
		if p.Key == property.Key && p.Name == property.Name && p.Visibility.Equal(property.Visibility) {
			properties[i] = property
			return properties
		}
	}
	return append(properties, property)
}

func filterProperties(properties []domain.Property, auths domain.Authorizations) []domain.Property {
	out := make([]domain.Property, 0, len(properties))
	for _, p := range properties {
		if p.Visibility.Visible(auths) {
			out = append(out, p)
		}
	}
	return out
}
