package pgsql

import (
	"context"
	"errors"

	"github.com/bings/visallo/internal/apperrors"
	"github.com/bings/visallo/internal/core/domain"
	portsrepo "github.com/bings/visallo/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxGraphRepository persists graph elements and their property revisions.
// Visibility filtering happens in SQL so invisible rows never leave the
// database; lookups of invisible elements report not-found.
type PgxGraphRepository struct {
	BaseRepository
}

// newPgxGraphRepository creates a new repository for graph data.
func newPgxGraphRepository(pool *pgxpool.Pool) portsrepo.GraphRepositoryFacade {
	return &PgxGraphRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxGraphRepository implements portsrepo.GraphRepositoryFacade
var _ portsrepo.GraphRepositoryFacade = (*PgxGraphRepository)(nil)

func (r *PgxGraphRepository) FindVertexByID(ctx context.Context, vertexID string, auths domain.Authorizations) (*domain.Vertex, error) {
	query := `
		SELECT vertex_id, visibility
		FROM vertices
		WHERE vertex_id = $1 AND ` + visibleClause("visibility", "$2") + `;
	`
	var vertex domain.Vertex
	err := r.Pool.QueryRow(ctx, query, vertexID, []string(auths)).Scan(&vertex.ID, &vertex.Visibility)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("vertex " + vertexID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find vertex "+vertexID, err)
	}

	vertex.Properties, err = r.getProperties(ctx, domain.ElementTypeVertex, vertexID, auths)
	if err != nil {
		return nil, err
	}
	return &vertex, nil
}

func (r *PgxGraphRepository) FindEdgeByID(ctx context.Context, edgeID string, auths domain.Authorizations) (*domain.Edge, error) {
	query := `
		SELECT edge_id, out_vertex_id, in_vertex_id, label, visibility
		FROM edges
		WHERE edge_id = $1 AND ` + visibleClause("visibility", "$2") + `;
	`
	var edge domain.Edge
	err := r.Pool.QueryRow(ctx, query, edgeID, []string(auths)).Scan(
		&edge.ID,
		&edge.OutVertexID,
		&edge.InVertexID,
		&edge.Label,
		&edge.Visibility,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("edge " + edgeID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find edge "+edgeID, err)
	}

	edge.Properties, err = r.getProperties(ctx, domain.ElementTypeEdge, edgeID, auths)
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

func (r *PgxGraphRepository) getProperties(ctx context.Context, elementType domain.ElementType, elementID string, auths domain.Authorizations) ([]domain.Property, error) {
	query := `
		SELECT key, name, value, visibility, metadata
		FROM element_properties
		WHERE element_type = $1 AND element_id = $2 AND ` + visibleClause("visibility", "$3") + `
		ORDER BY key, name;
	`
	rows, err := r.Pool.Query(ctx, query, elementType, elementID, []string(auths))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query properties of "+string(elementType)+" "+elementID, err)
	}
	defer rows.Close()

	properties := []domain.Property{}
	for rows.Next() {
		var p domain.Property
		if err := rows.Scan(&p.Key, &p.Name, &p.Value, &p.Visibility, &p.Metadata); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan property row", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read property rows", err)
	}
	return properties, nil
}

func (r *PgxGraphRepository) CountVertices(ctx context.Context, auths domain.Authorizations) (int, error) {
	query := `SELECT COUNT(*) FROM vertices WHERE ` + visibleClause("visibility", "$1") + `;`
	var count int
	if err := r.Pool.QueryRow(ctx, query, []string(auths)).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count vertices", err)
	}
	return count, nil
}

func (r *PgxGraphRepository) CountEdges(ctx context.Context, auths domain.Authorizations) (int, error) {
	query := `SELECT COUNT(*) FROM edges WHERE ` + visibleClause("visibility", "$1") + `;`
	var count int
	if err := r.Pool.QueryRow(ctx, query, []string(auths)).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count edges", err)
	}
	return count, nil
}

func (r *PgxGraphRepository) SaveVertex(ctx context.Context, vertex domain.Vertex) error {
	if vertex.ID == "" {
		return apperrors.NewValidationFailedError("vertex id is required")
	}
	visibility, err := visibilityParam(vertex.Visibility)
	if err != nil {
		return err
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO vertices (vertex_id, visibility)
		VALUES ($1, $2)
		ON CONFLICT (vertex_id) DO UPDATE SET visibility = EXCLUDED.visibility;
	`
	if _, err := tx.Exec(ctx, query, vertex.ID, visibility); err != nil {
		return apperrors.NewAppError(500, "failed to save vertex "+vertex.ID, err)
	}
	for _, p := range vertex.Properties {
		if err := upsertPropertyTx(ctx, tx, domain.ElementTypeVertex, vertex.ID, p); err != nil {
			return err
		}
	}
	return r.Commit(ctx, tx)
}

func (r *PgxGraphRepository) SaveEdge(ctx context.Context, edge domain.Edge) error {
	if edge.ID == "" {
		return apperrors.NewValidationFailedError("edge id is required")
	}
	visibility, err := visibilityParam(edge.Visibility)
	if err != nil {
		return err
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO edges (edge_id, out_vertex_id, in_vertex_id, label, visibility)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (edge_id) DO UPDATE SET
			out_vertex_id = EXCLUDED.out_vertex_id,
			in_vertex_id = EXCLUDED.in_vertex_id,
			label = EXCLUDED.label,
			visibility = EXCLUDED.visibility;
	`
	_, err = tx.Exec(ctx, query, edge.ID, edge.OutVertexID, edge.InVertexID, edge.Label, visibility)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return apperrors.NewValidationFailedError("edge " + edge.ID + " references a missing vertex")
		}
		return apperrors.NewAppError(500, "failed to save edge "+edge.ID, err)
	}
	for _, p := range edge.Properties {
		if err := upsertPropertyTx(ctx, tx, domain.ElementTypeEdge, edge.ID, p); err != nil {
			return err
		}
	}
	return r.Commit(ctx, tx)
}

func (r *PgxGraphRepository) SaveElementVisibility(ctx context.Context, ref domain.ElementRef, visibility domain.VisibilityLabel) error {
	encoded, err := visibilityParam(visibility)
	if err != nil {
		return err
	}

	var query string
	switch ref.Type {
	case domain.ElementTypeEdge:
		query = `UPDATE edges SET visibility = $2 WHERE edge_id = $1;`
	default:
		query = `UPDATE vertices SET visibility = $2 WHERE vertex_id = $1;`
	}
	tag, err := r.Pool.Exec(ctx, query, ref.ID, encoded)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update visibility of "+string(ref.Type)+" "+ref.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(string(ref.Type) + " " + ref.ID + " not found")
	}
	return nil
}

func (r *PgxGraphRepository) SetProperty(ctx context.Context, ref domain.ElementRef, property domain.Property) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := upsertPropertyTx(ctx, tx, ref.Type, ref.ID, property); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func upsertPropertyTx(ctx context.Context, tx pgx.Tx, elementType domain.ElementType, elementID string, property domain.Property) error {
	visibility, err := visibilityParam(property.Visibility)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO element_properties (element_type, element_id, key, name, value, visibility, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (element_type, element_id, key, name, visibility) DO UPDATE SET
			value = EXCLUDED.value,
			metadata = EXCLUDED.metadata;
	`
	_, err = tx.Exec(ctx, query, elementType, elementID, property.Key, property.Name, property.Value, visibility, property.Metadata)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return apperrors.NewNotFoundError(string(elementType) + " " + elementID + " not found")
		}
		return apperrors.NewAppError(500, "failed to save property "+property.Key+"/"+property.Name+" on "+string(elementType)+" "+elementID, err)
	}
	return nil
}

func (r *PgxGraphRepository) DeleteProperty(ctx context.Context, ref domain.ElementRef, key, name string, visibility domain.VisibilityLabel) error {
	encoded, err := visibilityParam(visibility)
	if err != nil {
		return err
	}
	query := `
		DELETE FROM element_properties
		WHERE element_type = $1 AND element_id = $2 AND key = $3 AND name = $4 AND visibility = $5;
	`
	// Deleting an absent revision is a no-op, matching the in-memory store.
	if _, err := r.Pool.Exec(ctx, query, ref.Type, ref.ID, key, name, encoded); err != nil {
		return apperrors.NewAppError(500, "failed to delete property "+key+"/"+name+" on "+string(ref.Type)+" "+ref.ID, err)
	}
	return nil
}

func (r *PgxGraphRepository) DeleteElement(ctx context.Context, ref domain.ElementRef) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	switch ref.Type {
	case domain.ElementTypeEdge:
		if _, err := tx.Exec(ctx, `DELETE FROM element_properties WHERE element_type = $1 AND element_id = $2;`, ref.Type, ref.ID); err != nil {
			return apperrors.NewAppError(500, "failed to delete properties of edge "+ref.ID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM edges WHERE edge_id = $1;`, ref.ID); err != nil {
			return apperrors.NewAppError(500, "failed to delete edge "+ref.ID, err)
		}
	default:
		// A vertex takes its incident edges with it.
		query := `
			DELETE FROM element_properties
			WHERE element_type = 'edge' AND element_id IN (
				SELECT edge_id FROM edges WHERE out_vertex_id = $1 OR in_vertex_id = $1
			);
		`
		if _, err := tx.Exec(ctx, query, ref.ID); err != nil {
			return apperrors.NewAppError(500, "failed to delete properties of edges incident to vertex "+ref.ID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM edges WHERE out_vertex_id = $1 OR in_vertex_id = $1;`, ref.ID); err != nil {
			return apperrors.NewAppError(500, "failed to delete edges incident to vertex "+ref.ID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM element_properties WHERE element_type = 'vertex' AND element_id = $1;`, ref.ID); err != nil {
			return apperrors.NewAppError(500, "failed to delete properties of vertex "+ref.ID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM vertices WHERE vertex_id = $1;`, ref.ID); err != nil {
			return apperrors.NewAppError(500, "failed to delete vertex "+ref.ID, err)
		}
	}
	return r.Commit(ctx, tx)
}

// Flush is a no-op: every write commits before returning.
func (r *PgxGraphRepository) Flush(ctx context.Context) error {
	return nil
}

func (r *PgxGraphRepository) RegisterAuthorization(ctx context.Context, scope string) error {
	if scope == "" {
		return apperrors.NewValidationFailedError("authorization scope is required")
	}
	query := `
		INSERT INTO graph_authorizations (scope)
		VALUES ($1)
		ON CONFLICT (scope) DO NOTHING;
	`
	if _, err := r.Pool.Exec(ctx, query, scope); err != nil {
		return apperrors.NewAppError(500, "failed to register authorization "+scope, err)
	}
	return nil
}

func (r *PgxGraphRepository) UnregisterAuthorization(ctx context.Context, scope string) error {
	if _, err := r.Pool.Exec(ctx, `DELETE FROM graph_authorizations WHERE scope = $1;`, scope); err != nil {
		return apperrors.NewAppError(500, "failed to unregister authorization "+scope, err)
	}
	return nil
}

func (r *PgxGraphRepository) ListAuthorizations(ctx context.Context) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `SELECT scope FROM graph_authorizations ORDER BY scope;`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list authorizations", err)
	}
	defer rows.Close()

	scopes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect authorization rows", err)
	}
	return scopes, nil
}
