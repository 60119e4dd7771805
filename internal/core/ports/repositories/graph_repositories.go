package repositories

import (
	"context"

	"github.com/bings/visallo/internal/core/domain"
)

// GraphReader defines authorization-filtered read operations against the graph
// storage collaborator. Lookups of elements the given authorizations cannot see
// return apperrors.ErrNotFound, never a permission error, so callers cannot
// probe for the existence of invisible elements.
type GraphReader interface {
	FindVertexByID(ctx context.Context, vertexID string, auths domain.Authorizations) (*domain.Vertex, error)
	FindEdgeByID(ctx context.Context, edgeID string, auths domain.Authorizations) (*domain.Edge, error)

	// CountVertices and CountEdges report how many elements the given
	// authorizations can see.
	CountVertices(ctx context.Context, auths domain.Authorizations) (int, error)
	CountEdges(ctx context.Context, auths domain.Authorizations) (int, error)
}

// GraphWriter defines mutation operations against the graph storage
// collaborator. The storage layer guarantees atomic read-modify-write per
// (element, key, name, visibility) coordinate; no cross-coordinate locking is
// provided or required.
type GraphWriter interface {
	SaveVertex(ctx context.Context, vertex domain.Vertex) error
	SaveEdge(ctx context.Context, edge domain.Edge) error

	// SaveElementVisibility replaces the element's own visibility label.
	SaveElementVisibility(ctx context.Context, ref domain.ElementRef, visibility domain.VisibilityLabel) error

	// SetProperty upserts the revision identified by (ref, key, name, visibility
	// workspace scope). Revisions under different scopes coexist.
	SetProperty(ctx context.Context, ref domain.ElementRef, property domain.Property) error

	// DeleteProperty removes the revision carrying exactly the given visibility.
	DeleteProperty(ctx context.Context, ref domain.ElementRef, key, name string, visibility domain.VisibilityLabel) error

	DeleteElement(ctx context.Context, ref domain.ElementRef) error

	// Flush makes prior writes visible to subsequent reads.
	Flush(ctx context.Context) error
}

// GraphAuthorizationRepository registers visibility scopes with the storage
// layer so that readers holding them can see newly scoped data.
type GraphAuthorizationRepository interface {
	RegisterAuthorization(ctx context.Context, scope string) error
	UnregisterAuthorization(ctx context.Context, scope string) error
	ListAuthorizations(ctx context.Context) ([]string, error)
}

// GraphRepositoryFacade combines all graph storage operations.
type GraphRepositoryFacade interface {
	GraphReader
	GraphWriter
	GraphAuthorizationRepository
}
