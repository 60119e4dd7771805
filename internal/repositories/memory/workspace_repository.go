package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bings/visallo/internal/apperrors"
	"github.com/bings/visallo/internal/core/domain"
	portsrepo "github.com/bings/visallo/internal/core/ports/repositories"
)

type membershipKey struct {
	workspaceID string
	userID      string
}

type entityKey struct {
	workspaceID string
	elementType domain.ElementType
	elementID   string
}

// WorkspaceRepository is a thread-safe in-memory store for workspaces, the
// membership relation and the content relation.
type WorkspaceRepository struct {
	mu          sync.RWMutex
	workspaces  map[string]domain.Workspace
	memberships map[membershipKey]domain.WorkspaceUser
	entities    map[entityKey]domain.WorkspaceEntity
}

// NewWorkspaceRepository creates an empty in-memory workspace store.
func NewWorkspaceRepository() *WorkspaceRepository {
	return &WorkspaceRepository{
		workspaces:  make(map[string]domain.Workspace),
		memberships: make(map[membershipKey]domain.WorkspaceUser),
		entities:    make(map[entityKey]domain.WorkspaceEntity),
	}
}

var _ portsrepo.WorkspaceRepositoryFacade = (*WorkspaceRepository)(nil)

// FindWorkspaceByID returns the workspace or apperrors.ErrNotFound.
func (r *WorkspaceRepository) FindWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ws, ok := r.workspaces[workspaceID]
	if !ok {
		return nil, apperrors.NewNotFoundError("workspace " + workspaceID + " not found")
	}
	return &ws, nil
}

// ListWorkspacesByUserID returns every workspace the user is a member of,
// ordered by workspace id for stable results.
func (r *WorkspaceRepository) ListWorkspacesByUserID(ctx context.Context, userID string) ([]domain.Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Workspace
	for key, m := range r.memberships {
		if key.userID != userID || m.Access == domain.AccessNone {
			continue
		}
		if ws, ok := r.workspaces[key.workspaceID]; ok {
			out = append(out, ws)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkspaceID < out[j].WorkspaceID })
	return out, nil
}

// FindWorkspaceUser returns the membership row or apperrors.ErrNotFound.
func (r *WorkspaceRepository) FindWorkspaceUser(ctx context.Context, workspaceID, userID string) (*domain.WorkspaceUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.memberships[membershipKey{workspaceID: workspaceID, userID: userID}]
	if !ok {
		return nil, apperrors.NewNotFoundError("user " + userID + " is not on workspace " + workspaceID)
	}
	return &m, nil
}

// ListWorkspaceUsers returns every membership row of the workspace, ordered by
// user id.
func (r *WorkspaceRepository) ListWorkspaceUsers(ctx context.Context, workspaceID string) ([]domain.WorkspaceUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.WorkspaceUser
	for key, m := range r.memberships {
		if key.workspaceID == workspaceID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// ListWorkspaceEntities returns the workspace's content rows, ordered by
// element id.
func (r *WorkspaceRepository) ListWorkspaceEntities(ctx context.Context, workspaceID string) ([]domain.WorkspaceEntity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.WorkspaceEntity
	for key, e := range r.entities {
		if key.workspaceID == workspaceID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ElementID < out[j].ElementID })
	return out, nil
}

// SaveWorkspace creates or replaces the workspace row.
func (r *WorkspaceRepository) SaveWorkspace(ctx context.Context, workspace domain.Workspace) error {
	if workspace.WorkspaceID == "" {
		return apperrors.NewValidationFailedError("workspace id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workspaces[workspace.WorkspaceID] = workspace
	return nil
}

// UpsertWorkspaceUser creates or updates the membership row and reports whether
// a new row was created.
func (r *WorkspaceRepository) UpsertWorkspaceUser(ctx context.Context, membership domain.WorkspaceUser) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workspaces[membership.WorkspaceID]; !ok {
		return false, apperrors.NewNotFoundError("workspace " + membership.WorkspaceID + " not found")
	}
	key := membershipKey{workspaceID: membership.WorkspaceID, userID: membership.UserID}
	_, existed := r.memberships[key]
	r.memberships[key] = membership
	return !existed, nil
}

// DeleteWorkspaceUser removes the membership row. Removing an absent row is a
// no-op.
func (r *WorkspaceRepository) DeleteWorkspaceUser(ctx context.Context, workspaceID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.memberships, membershipKey{workspaceID: workspaceID, userID: userID})
	return nil
}

// UpsertWorkspaceEntity records that the workspace has been used to edit the
// element. Idempotent.
func (r *WorkspaceRepository) UpsertWorkspaceEntity(ctx context.Context, entity domain.WorkspaceEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workspaces[entity.WorkspaceID]; !ok {
		return apperrors.NewNotFoundError("workspace " + entity.WorkspaceID + " not found")
	}
	r.entities[entityKey{workspaceID: entity.WorkspaceID, elementType: entity.ElementType, elementID: entity.ElementID}] = entity
	return nil
}

// DeleteWorkspace removes the workspace row together with all of its membership
// and content rows.
func (r *WorkspaceRepository) DeleteWorkspace(ctx context.Context, workspaceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workspaces[workspaceID]; !ok {
		return apperrors.NewNotFoundError("workspace " + workspaceID + " not found")
	}
	delete(r.workspaces, workspaceID)
	for key := range r.memberships {
		if key.workspaceID == workspaceID {
			delete(r.memberships, key)
		}
	}
	for key := range r.entities {
		if key.workspaceID == workspaceID {
			delete(r.entities, key)
		}
	}
	return nil
}
