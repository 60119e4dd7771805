package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/bings/visallo/internal/apperrors"
	"github.com/bings/visallo/internal/core/domain"
	portssvc "github.com/bings/visallo/internal/core/ports/services"
	"github.com/bings/visallo/internal/core/services"
	"github.com/bings/visallo/internal/repositories/memory"
	"github.com/stretchr/testify/suite"
)

// PublishServiceTestSuite drives the publish state machine against the in-memory
// graph store, so the tests see the real interplay between visibility labels and
// the per-coordinate revision storage.
type PublishServiceTestSuite struct {
	suite.Suite
	graphRepo *memory.GraphRepository
	service   portssvc.PublishSvcFacade

	workspaceID string
	auths       domain.Authorizations
}

func (suite *PublishServiceTestSuite) SetupTest() {
	suite.graphRepo = memory.NewGraphRepository()
	suite.service = services.NewPublishService(suite.graphRepo)
	suite.workspaceID = domain.WorkspaceIDPrefix + "pub-test"
	suite.auths = domain.NewAuthorizations(suite.workspaceID)
}

func (suite *PublishServiceTestSuite) sandboxLabel() domain.VisibilityLabel {
	label, err := domain.NewSandboxVisibility(domain.VisibilityLabel{Source: "analyst"}, suite.workspaceID)
	suite.Require().NoError(err)
	return label
}

// seedVertex stores a public vertex carrying the given property revisions.
func (suite *PublishServiceTestSuite) seedVertex(id string, properties ...domain.Property) {
	err := suite.graphRepo.SaveVertex(context.Background(), domain.Vertex{
		ID:         id,
		Visibility: domain.PublicVisibility(),
		Properties: properties,
	})
	suite.Require().NoError(err)
}

// --- Property publish ---

func (suite *PublishServiceTestSuite) TestPublish_PropertyBecomesPublic() {
	ctx := context.Background()
	suite.seedVertex("v1", domain.Property{
		Key:        "k1",
		Name:       "fullName",
		Value:      "Ada Lovelace",
		Visibility: suite.sandboxLabel(),
		Metadata:   domain.Metadata{domain.MetadataKeyModifiedBy: "u1"},
	})

	response, err := suite.service.Publish(ctx, []domain.PublishItem{{
		Type:     domain.PublishItemTypeProperty,
		Action:   domain.PublishActionAddOrUpdate,
		VertexID: "v1",
		Key:      "k1",
		Name:     "fullName",
	}}, suite.workspaceID, suite.auths)

	suite.Require().NoError(err)
	suite.True(response.Success())

	// A reader with no authorizations now sees exactly one public revision.
	vertex, err := suite.graphRepo.FindVertexByID(ctx, "v1", nil)
	suite.Require().NoError(err)
	suite.Require().Len(vertex.Properties, 1)
	published := vertex.Properties[0]
	suite.Equal("Ada Lovelace", published.Value)
	suite.True(published.Visibility.IsPublic())
	suite.Empty(published.Visibility.Source)
	suite.Equal("u1", published.Metadata[domain.MetadataKeyModifiedBy])
}

func (suite *PublishServiceTestSuite) TestPublish_PublicChangedReplacesCommittedValue() {
	ctx := context.Background()
	suite.seedVertex("v1",
		domain.Property{Key: "k1", Name: "fullName", Value: "Old Name", Visibility: domain.PublicVisibility()},
		domain.Property{Key: "k1", Name: "fullName", Value: "New Name", Visibility: suite.sandboxLabel()},
	)

	response, err := suite.service.Publish(ctx, []domain.PublishItem{{
		Type:     domain.PublishItemTypeProperty,
		Action:   domain.PublishActionAddOrUpdate,
		VertexID: "v1",
		Key:      "k1",
		Name:     "fullName",
	}}, suite.workspaceID, suite.auths)

	suite.Require().NoError(err)
	suite.True(response.Success())

	vertex, err := suite.graphRepo.FindVertexByID(ctx, "v1", nil)
	suite.Require().NoError(err)
	suite.Require().Len(vertex.Properties, 1)
	suite.Equal("New Name", vertex.Properties[0].Value)
	suite.True(vertex.Properties[0].Visibility.IsPublic())
}

func (suite *PublishServiceTestSuite) TestPublish_MissingSandboxedPropertyFails() {
	ctx := context.Background()
	// Only a public revision exists, so there is nothing to promote.
	suite.seedVertex("v1", domain.Property{
		Key: "k1", Name: "fullName", Value: "Committed", Visibility: domain.PublicVisibility(),
	})

	response, err := suite.service.Publish(ctx, []domain.PublishItem{{
		Type:     domain.PublishItemTypeProperty,
		Action:   domain.PublishActionAddOrUpdate,
		VertexID: "v1",
		Key:      "k1",
		Name:     "fullName",
	}}, suite.workspaceID, suite.auths)

	suite.Require().NoError(err)
	suite.Require().Len(response.Failures, 1)
	suite.Equal(fmt.Sprintf("no property with key 'k1' and name 'fullName' found on workspace '%s'", suite.workspaceID),
		response.Failures[0].ErrorMessage)
	suite.Equal("v1", response.Failures[0].VertexID)
}

func (suite *PublishServiceTestSuite) TestPublish_SecondPublishFailsTheSameWay() {
	ctx := context.Background()
	suite.seedVertex("v1", domain.Property{
		Key: "k1", Name: "fullName", Value: "Ada", Visibility: suite.sandboxLabel(),
	})
	item := domain.PublishItem{
		Type:     domain.PublishItemTypeProperty,
		Action:   domain.PublishActionAddOrUpdate,
		VertexID: "v1",
		Key:      "k1",
		Name:     "fullName",
	}

	first, err := suite.service.Publish(ctx, []domain.PublishItem{item}, suite.workspaceID, suite.auths)
	suite.Require().NoError(err)
	suite.True(first.Success())

	// The sandboxed revision is gone, so republishing must be rejected rather
	// than silently rewriting the committed value.
	second, err := suite.service.Publish(ctx, []domain.PublishItem{item}, suite.workspaceID, suite.auths)
	suite.Require().NoError(err)
	suite.Require().Len(second.Failures, 1)
	suite.Contains(second.Failures[0].ErrorMessage, "no property with key 'k1'")
}

func (suite *PublishServiceTestSuite) TestPublish_DeleteRemovesSandboxedAndShadowedPublic() {
	ctx := context.Background()
	suite.seedVertex("v1",
		domain.Property{Key: "k1", Name: "fullName", Value: "Committed", Visibility: domain.PublicVisibility()},
		domain.Property{Key: "k1", Name: "fullName", Value: "Tombstone", Visibility: suite.sandboxLabel()},
	)

	response, err := suite.service.Publish(ctx, []domain.PublishItem{{
		Type:     domain.PublishItemTypeProperty,
		Action:   domain.PublishActionDelete,
		VertexID: "v1",
		Key:      "k1",
		Name:     "fullName",
	}}, suite.workspaceID, suite.auths)

	suite.Require().NoError(err)
	suite.True(response.Success())

	vertex, err := suite.graphRepo.FindVertexByID(ctx, "v1", suite.auths)
	suite.Require().NoError(err)
	suite.Empty(vertex.Properties)
}

func (suite *PublishServiceTestSuite) TestPublish_FailedItemDoesNotPoisonSiblings() {
	ctx := context.Background()
	suite.seedVertex("v1",
		domain.Property{Key: "k1", Name: "fullName", Value: "Ada", Visibility: suite.sandboxLabel()},
	)

	response, err := suite.service.Publish(ctx, []domain.PublishItem{
		{Type: domain.PublishItemTypeProperty, Action: domain.PublishActionAddOrUpdate, VertexID: "missing", Key: "k1", Name: "fullName"},
		{Type: domain.PublishItemTypeProperty, Action: domain.PublishActionAddOrUpdate, VertexID: "v1", Key: "k1", Name: "fullName"},
	}, suite.workspaceID, suite.auths)

	suite.Require().NoError(err)
	suite.Require().Len(response.Failures, 1)
	suite.Equal("vertex 'missing' not found", response.Failures[0].ErrorMessage)

	// The second item still went through.
	vertex, err := suite.graphRepo.FindVertexByID(ctx, "v1", nil)
	suite.Require().NoError(err)
	suite.Require().Len(vertex.Properties, 1)
	suite.True(vertex.Properties[0].Visibility.IsPublic())
}

// --- Element publish ---

func (suite *PublishServiceTestSuite) TestPublish_VertexBecomesPublic() {
	ctx := context.Background()
	err := suite.graphRepo.SaveVertex(ctx, domain.Vertex{ID: "v1", Visibility: suite.sandboxLabel()})
	suite.Require().NoError(err)

	// Invisible to the unauthorized public before publish.
	_, err = suite.graphRepo.FindVertexByID(ctx, "v1", nil)
	suite.Require().ErrorIs(err, apperrors.ErrNotFound)

	response, err := suite.service.Publish(ctx, []domain.PublishItem{{
		Type:     domain.PublishItemTypeVertex,
		Action:   domain.PublishActionAddOrUpdate,
		VertexID: "v1",
	}}, suite.workspaceID, suite.auths)

	suite.Require().NoError(err)
	suite.True(response.Success())

	vertex, err := suite.graphRepo.FindVertexByID(ctx, "v1", nil)
	suite.Require().NoError(err)
	suite.True(vertex.Visibility.IsPublic())
	suite.Empty(vertex.Visibility.Source)
}

func (suite *PublishServiceTestSuite) TestPublish_EdgeDeleteRemovesEdge() {
	ctx := context.Background()
	suite.Require().NoError(suite.graphRepo.SaveVertex(ctx, domain.Vertex{ID: "a", Visibility: domain.PublicVisibility()}))
	suite.Require().NoError(suite.graphRepo.SaveVertex(ctx, domain.Vertex{ID: "b", Visibility: domain.PublicVisibility()}))
	suite.Require().NoError(suite.graphRepo.SaveEdge(ctx, domain.Edge{
		ID: "e1", OutVertexID: "a", InVertexID: "b", Label: "knows", Visibility: suite.sandboxLabel(),
	}))

	response, err := suite.service.Publish(ctx, []domain.PublishItem{{
		Type:   domain.PublishItemTypeEdge,
		Action: domain.PublishActionDelete,
		EdgeID: "e1",
	}}, suite.workspaceID, suite.auths)

	suite.Require().NoError(err)
	suite.True(response.Success())

	_, err = suite.graphRepo.FindEdgeByID(ctx, "e1", suite.auths)
	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *PublishServiceTestSuite) TestPublish_UnsandboxedElementFails() {
	ctx := context.Background()
	suite.seedVertex("v1")

	response, err := suite.service.Publish(ctx, []domain.PublishItem{{
		Type:     domain.PublishItemTypeVertex,
		Action:   domain.PublishActionAddOrUpdate,
		VertexID: "v1",
	}}, suite.workspaceID, suite.auths)

	suite.Require().NoError(err)
	suite.Require().Len(response.Failures, 1)
	suite.Contains(response.Failures[0].ErrorMessage, "not sandboxed in workspace")
}

func (suite *PublishServiceTestSuite) TestPublish_ItemNamingNoElementFails() {
	ctx := context.Background()

	response, err := suite.service.Publish(ctx, []domain.PublishItem{{
		Type:   domain.PublishItemTypeVertex,
		Action: domain.PublishActionAddOrUpdate,
	}}, suite.workspaceID, suite.auths)

	suite.Require().NoError(err)
	suite.Require().Len(response.Failures, 1)
	suite.Contains(response.Failures[0].ErrorMessage, "neither a vertex nor an edge")
}

// --- Batch-level guards ---

func (suite *PublishServiceTestSuite) TestPublish_BlankWorkspaceIDIsFatal() {
	ctx := context.Background()

	_, err := suite.service.Publish(ctx, []domain.PublishItem{{
		Type:     domain.PublishItemTypeVertex,
		Action:   domain.PublishActionAddOrUpdate,
		VertexID: "v1",
	}}, "  ", suite.auths)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	var encErr *apperrors.EncodingError
	suite.ErrorAs(err, &encErr)
}

func (suite *PublishServiceTestSuite) TestPublish_EmptyBatchSucceeds() {
	ctx := context.Background()

	response, err := suite.service.Publish(ctx, nil, suite.workspaceID, suite.auths)

	suite.Require().NoError(err)
	suite.True(response.Success())
	suite.NotNil(response.Failures)
}

func TestPublishServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PublishServiceTestSuite))
}
