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

type PgxWorkspaceRepository struct {
	BaseRepository
}

// newPgxWorkspaceRepository creates a new repository for workspace data.
func newPgxWorkspaceRepository(pool *pgxpool.Pool) portsrepo.WorkspaceRepositoryFacade {
	return &PgxWorkspaceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxWorkspaceRepository implements portsrepo.WorkspaceRepositoryFacade
var _ portsrepo.WorkspaceRepositoryFacade = (*PgxWorkspaceRepository)(nil)

var FULL_WORKSPACE_SELECT_QUERY = `
SELECT
	w.workspace_id, w.display_title, w.creator_user_id,
	w.created_at, w.created_by, w.last_updated_at, w.last_updated_by
FROM workspaces w
`

// getWorkspaces runs the shared select with the given filter clause.
func (r *PgxWorkspaceRepository) getWorkspaces(ctx context.Context, filterQuery string, args ...any) ([]domain.Workspace, error) {
	query := FULL_WORKSPACE_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query workspaces", err)
	}
	defer rows.Close()
	workspaces, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Workspace])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) { // No rows is not an error for a list.
			return []domain.Workspace{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect workspace rows", err)
	}
	return workspaces, nil
}

func (r *PgxWorkspaceRepository) SaveWorkspace(ctx context.Context, workspace domain.Workspace) error {
	query := `
		INSERT INTO workspaces (
			workspace_id, display_title, creator_user_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (workspace_id) DO UPDATE SET
			display_title = EXCLUDED.display_title,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		workspace.WorkspaceID,
		workspace.DisplayTitle,
		workspace.CreatorUserID,
		workspace.CreatedAt,
		workspace.CreatedBy,
		workspace.LastUpdatedAt,
		workspace.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return apperrors.NewValidationFailedError("creator user does not exist")
		}
		return apperrors.NewAppError(500, "failed to save workspace "+workspace.WorkspaceID, err)
	}
	return nil
}

func (r *PgxWorkspaceRepository) FindWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error) {
	query := `WHERE w.workspace_id = $1`
	workspaces, err := r.getWorkspaces(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	if len(workspaces) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &workspaces[0], nil
}

func (r *PgxWorkspaceRepository) ListWorkspacesByUserID(ctx context.Context, userID string) ([]domain.Workspace, error) {
	query := `
		JOIN workspace_users wu ON w.workspace_id = wu.workspace_id
		WHERE wu.user_id = $1
		ORDER BY w.workspace_id
	`
	return r.getWorkspaces(ctx, query, userID)
}

func (r *PgxWorkspaceRepository) FindWorkspaceUser(ctx context.Context, workspaceID, userID string) (*domain.WorkspaceUser, error) {
	query := `
		SELECT workspace_id, user_id, access, is_creator, joined_at
		FROM workspace_users
		WHERE workspace_id = $1 AND user_id = $2;
	`
	var wu domain.WorkspaceUser
	err := r.Pool.QueryRow(ctx, query, workspaceID, userID).Scan(
		&wu.WorkspaceID,
		&wu.UserID,
		&wu.Access,
		&wu.IsCreator,
		&wu.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("user " + userID + " is not on workspace " + workspaceID)
		}
		return nil, apperrors.NewAppError(500, "failed to find user "+userID+" on workspace "+workspaceID, err)
	}
	return &wu, nil
}

func (r *PgxWorkspaceRepository) ListWorkspaceUsers(ctx context.Context, workspaceID string) ([]domain.WorkspaceUser, error) {
	query := `
		SELECT workspace_id, user_id, access, is_creator, joined_at
		FROM workspace_users
		WHERE workspace_id = $1
		ORDER BY user_id;
	`
	rows, err := r.Pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query workspace users", err)
	}
	defer rows.Close()
	users, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.WorkspaceUser])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect workspace user rows", err)
	}
	return users, nil
}

func (r *PgxWorkspaceRepository) ListWorkspaceEntities(ctx context.Context, workspaceID string) ([]domain.WorkspaceEntity, error) {
	query := `
		SELECT workspace_id, element_type, element_id, created_at
		FROM workspace_entities
		WHERE workspace_id = $1
		ORDER BY element_id;
	`
	rows, err := r.Pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query workspace entities", err)
	}
	defer rows.Close()
	entities, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.WorkspaceEntity])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect workspace entity rows", err)
	}
	return entities, nil
}

func (r *PgxWorkspaceRepository) UpsertWorkspaceUser(ctx context.Context, membership domain.WorkspaceUser) (bool, error) {
	query := `
		INSERT INTO workspace_users (workspace_id, user_id, access, is_creator, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (workspace_id, user_id) DO UPDATE SET access = EXCLUDED.access
		RETURNING (xmax = 0);
	` // xmax = 0 distinguishes a fresh insert from a conflict update
	var created bool
	err := r.Pool.QueryRow(ctx, query,
		membership.WorkspaceID,
		membership.UserID,
		membership.Access,
		membership.IsCreator,
		membership.JoinedAt,
	).Scan(&created)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return false, apperrors.NewNotFoundError("workspace " + membership.WorkspaceID + " not found")
		}
		return false, apperrors.NewAppError(500, "failed to add/update user "+membership.UserID+" on workspace "+membership.WorkspaceID, err)
	}
	return created, nil
}

func (r *PgxWorkspaceRepository) DeleteWorkspaceUser(ctx context.Context, workspaceID, userID string) error {
	query := `DELETE FROM workspace_users WHERE workspace_id = $1 AND user_id = $2;`
	if _, err := r.Pool.Exec(ctx, query, workspaceID, userID); err != nil {
		return apperrors.NewAppError(500, "failed to remove user "+userID+" from workspace "+workspaceID, err)
	}
	return nil
}

func (r *PgxWorkspaceRepository) UpsertWorkspaceEntity(ctx context.Context, entity domain.WorkspaceEntity) error {
	query := `
		INSERT INTO workspace_entities (workspace_id, element_type, element_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (workspace_id, element_type, element_id) DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, query, entity.WorkspaceID, entity.ElementType, entity.ElementID, entity.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return apperrors.NewNotFoundError("workspace " + entity.WorkspaceID + " not found")
		}
		return apperrors.NewAppError(500, "failed to track entity "+entity.ElementID+" on workspace "+entity.WorkspaceID, err)
	}
	return nil
}

func (r *PgxWorkspaceRepository) DeleteWorkspace(ctx context.Context, workspaceID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM workspace_entities WHERE workspace_id = $1;`, workspaceID); err != nil {
		return apperrors.NewAppError(500, "failed to delete entities of workspace "+workspaceID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM workspace_users WHERE workspace_id = $1;`, workspaceID); err != nil {
		return apperrors.NewAppError(500, "failed to delete memberships of workspace "+workspaceID, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM workspaces WHERE workspace_id = $1;`, workspaceID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete workspace "+workspaceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("workspace " + workspaceID + " not found")
	}
	return r.Commit(ctx, tx)
}
