package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bings/visallo/internal/apperrors"
	"github.com/bings/visallo/internal/core/domain"
	portsrepo "github.com/bings/visallo/internal/core/ports/repositories"
	portssvc "github.com/bings/visallo/internal/core/ports/services"
)

// publishService implements the publish state machine. Each item of a batch
// moves independently from pending to applied or failed; outcomes are collected
// as values rather than raised, so one bad item never takes its siblings down.
type publishService struct {
	BaseService
	graphRepo portsrepo.GraphRepositoryFacade
}

// NewPublishService creates a new publish service backed by the graph storage collaborator.
func NewPublishService(graphRepo portsrepo.GraphRepositoryFacade) portssvc.PublishSvcFacade {
	return &publishService{graphRepo: graphRepo}
}

// Ensure publishService implements the PublishSvcFacade interface
var _ portssvc.PublishSvcFacade = (*publishService)(nil)

// Publish walks the batch in order. The returned response carries one failure
// per rejected item; applied items are not echoed back. The error return is
// reserved for conditions that poison the whole batch, such as a blank
// workspace id, which could otherwise publish under a leaked public label.
func (s *publishService) Publish(ctx context.Context, items []domain.PublishItem, workspaceID string, auths domain.Authorizations) (domain.PublishResponse, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return domain.PublishResponse{}, apperrors.NewEncodingError("publish requires a workspace id")
	}

	response := domain.PublishResponse{Failures: []domain.PublishFailure{}}
	for _, item := range items {
		if failure := s.publishItem(ctx, item, workspaceID, auths); failure != nil {
			s.LogWarn(ctx, "Publish item failed",
				slog.String("workspace_id", workspaceID),
				slog.String("item_type", string(item.Type)),
				slog.String("error_message", failure.ErrorMessage))
			response.Failures = append(response.Failures, *failure)
		}
	}

	if err := s.graphRepo.Flush(ctx); err != nil {
		s.LogError(ctx, err, "Failed to flush graph after publish",
			slog.String("workspace_id", workspaceID))
		return response, fmt.Errorf("failed to flush graph: %w", err)
	}

	s.LogInfo(ctx, "Publish batch completed",
		slog.String("workspace_id", workspaceID),
		slog.Int("item_count", len(items)),
		slog.Int("failure_count", len(response.Failures)))
	return response, nil
}

// publishItem applies one publish item and returns nil on success or the
// failure record to report.
func (s *publishService) publishItem(ctx context.Context, item domain.PublishItem, workspaceID string, auths domain.Authorizations) *domain.PublishFailure {
	ref, err := item.ElementRef()
	if err != nil {
		f := item.Failure(err.Error())
		return &f
	}

	visibility, properties, err := s.loadElement(ctx, ref, auths)
	if err != nil {
		f := item.Failure(fmt.Sprintf("%s '%s' not found", ref.Type, ref.ID))
		return &f
	}

	if item.Type == domain.PublishItemTypeProperty {
		return s.publishProperty(ctx, item, ref, properties, workspaceID)
	}
	return s.publishElement(ctx, item, ref, visibility, workspaceID)
}

func (s *publishService) loadElement(ctx context.Context, ref domain.ElementRef, auths domain.Authorizations) (domain.VisibilityLabel, []domain.Property, error) {
	switch ref.Type {
	case domain.ElementTypeEdge:
		edge, err := s.graphRepo.FindEdgeByID(ctx, ref.ID, auths)
		if err != nil {
			return domain.VisibilityLabel{}, nil, err
		}
		return edge.Visibility, edge.Properties, nil
	default:
		vertex, err := s.graphRepo.FindVertexByID(ctx, ref.ID, auths)
		if err != nil {
			return domain.VisibilityLabel{}, nil, err
		}
		return vertex.Visibility, vertex.Properties, nil
	}
}

// publishProperty promotes a single (key, name) revision. A request for a
// coordinate with no workspace-scoped revision is rejected, not treated as a
// silent no-op: the caller asserted a change exists, and a stale request must be
// detectable. This also makes a double publish fail the same way instead of
// touching the committed revision.
func (s *publishService) publishProperty(ctx context.Context, item domain.PublishItem, ref domain.ElementRef, properties []domain.Property, workspaceID string) *domain.PublishFailure {
	revisions := domain.PropertiesByKeyName(properties, item.Key, item.Name)

	var sandboxed *domain.Property
	for i := range revisions {
		status := GetPropertySandboxStatus(properties, revisions[i], workspaceID)
		if status == domain.SandboxStatusPrivate || status == domain.SandboxStatusPublicChanged {
			sandboxed = &revisions[i]
			break
		}
	}
	if sandboxed == nil {
		f := item.Failure(fmt.Sprintf("no property with key '%s' and name '%s' found on workspace '%s'",
			item.Key, item.Name, workspaceID))
		return &f
	}

	switch item.Action {
	case domain.PublishActionDelete:
		// Promote a sandboxed deletion: drop the sandboxed revision and any
		// public revision it shadowed.
		if err := s.graphRepo.DeleteProperty(ctx, ref, item.Key, item.Name, sandboxed.Visibility); err != nil {
			f := item.Failure(fmt.Sprintf("failed to delete property: %v", err))
			return &f
		}
		for _, rev := range revisions {
			if rev.Visibility.IsPublic() {
				if err := s.graphRepo.DeleteProperty(ctx, ref, item.Key, item.Name, rev.Visibility); err != nil {
					f := item.Failure(fmt.Sprintf("failed to delete public property: %v", err))
					return &f
				}
			}
		}
		return nil

	default:
		committedVisibility := sandboxed.Visibility.ToPublicVisibility(workspaceID)
		committed := domain.Property{
			Key:        item.Key,
			Name:       item.Name,
			Value:      sandboxed.Value,
			Visibility: committedVisibility,
			Metadata:   sandboxed.Metadata.Clone(),
		}
		if err := s.graphRepo.SetProperty(ctx, ref, committed); err != nil {
			f := item.Failure(fmt.Sprintf("failed to save property: %v", err))
			return &f
		}
		// The sandboxed revision lives at a different visibility coordinate than
		// the committed one; remove it so the override disappears everywhere.
		if err := s.graphRepo.DeleteProperty(ctx, ref, item.Key, item.Name, sandboxed.Visibility); err != nil {
			f := item.Failure(fmt.Sprintf("failed to remove sandboxed property: %v", err))
			return &f
		}
		return nil
	}
}

// publishElement promotes a sandboxed vertex or edge itself.
func (s *publishService) publishElement(ctx context.Context, item domain.PublishItem, ref domain.ElementRef, visibility domain.VisibilityLabel, workspaceID string) *domain.PublishFailure {
	if !visibility.HasWorkspace(workspaceID) {
		f := item.Failure(fmt.Sprintf("%s '%s' is not sandboxed in workspace '%s'", ref.Type, ref.ID, workspaceID))
		return &f
	}

	switch item.Action {
	case domain.PublishActionDelete:
		if err := s.graphRepo.DeleteElement(ctx, ref); err != nil {
			f := item.Failure(fmt.Sprintf("failed to delete %s: %v", ref.Type, err))
			return &f
		}
		return nil

	default:
		if err := s.graphRepo.SaveElementVisibility(ctx, ref, visibility.ToPublicVisibility(workspaceID)); err != nil {
			f := item.Failure(fmt.Sprintf("failed to publish %s: %v", ref.Type, err))
			return &f
		}
		return nil
	}
}
