package services

import (
	"context"

	"github.com/bings/visallo/internal/core/domain"
)

// PublishSvcFacade promotes sandboxed changes to public visibility.
type PublishSvcFacade interface {
	// Publish walks the batch in order and applies or rejects each item
	// independently. The returned response lists per-item failures; an empty
	// list means full success. A failing item never aborts its siblings. The
	// error return is reserved for failures that invalidate the whole batch,
	// such as a visibility encoding error.
	Publish(ctx context.Context, items []domain.PublishItem, workspaceID string, auths domain.Authorizations) (domain.PublishResponse, error)
}
