package services_test

import (
	"context"
	"testing"

	"github.com/bings/visallo/internal/apperrors"
	"github.com/bings/visallo/internal/core/domain"
	portssvc "github.com/bings/visallo/internal/core/ports/services"
	"github.com/bings/visallo/internal/core/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock WorkspaceRepository (based on WorkspaceService usage) ---
type MockWorkspaceRepository struct {
	mock.Mock
	FindWorkspaceByIDFn     func(ctx context.Context, workspaceID string) (*domain.Workspace, error)
	FindWorkspaceUserFn     func(ctx context.Context, workspaceID, userID string) (*domain.WorkspaceUser, error)
	UpsertWorkspaceUserFn   func(ctx context.Context, membership domain.WorkspaceUser) (bool, error)
	ListWorkspacesByUserFn  func(ctx context.Context, userID string) ([]domain.Workspace, error)
	DeleteWorkspaceFn       func(ctx context.Context, workspaceID string) error
	UpsertWorkspaceEntityFn func(ctx context.Context, entity domain.WorkspaceEntity) error
}

func (m *MockWorkspaceRepository) SaveWorkspace(ctx context.Context, workspace domain.Workspace) error {
	args := m.Called(ctx, workspace)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) FindWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error) {
	if m.FindWorkspaceByIDFn != nil {
		return m.FindWorkspaceByIDFn(ctx, workspaceID)
	}
	args := m.Called(ctx, workspaceID)
	var workspace *domain.Workspace
	if args.Get(0) != nil {
		workspace = args.Get(0).(*domain.Workspace)
	}
	return workspace, args.Error(1)
}

func (m *MockWorkspaceRepository) ListWorkspacesByUserID(ctx context.Context, userID string) ([]domain.Workspace, error) {
	if m.ListWorkspacesByUserFn != nil {
		return m.ListWorkspacesByUserFn(ctx, userID)
	}
	args := m.Called(ctx, userID)
	var workspaces []domain.Workspace
	if args.Get(0) != nil {
		workspaces = args.Get(0).([]domain.Workspace)
	}
	return workspaces, args.Error(1)
}

func (m *MockWorkspaceRepository) FindWorkspaceUser(ctx context.Context, workspaceID, userID string) (*domain.WorkspaceUser, error) {
	if m.FindWorkspaceUserFn != nil {
		return m.FindWorkspaceUserFn(ctx, workspaceID, userID)
	}
	args := m.Called(ctx, workspaceID, userID)
	var membership *domain.WorkspaceUser
	if args.Get(0) != nil {
		membership = args.Get(0).(*domain.WorkspaceUser)
	}
	return membership, args.Error(1)
}

func (m *MockWorkspaceRepository) ListWorkspaceUsers(ctx context.Context, workspaceID string) ([]domain.WorkspaceUser, error) {
	args := m.Called(ctx, workspaceID)
	var users []domain.WorkspaceUser
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.WorkspaceUser)
	}
	return users, args.Error(1)
}

func (m *MockWorkspaceRepository) ListWorkspaceEntities(ctx context.Context, workspaceID string) ([]domain.WorkspaceEntity, error) {
	args := m.Called(ctx, workspaceID)
	var entities []domain.WorkspaceEntity
	if args.Get(0) != nil {
		entities = args.Get(0).([]domain.WorkspaceEntity)
	}
	return entities, args.Error(1)
}

func (m *MockWorkspaceRepository) UpsertWorkspaceUser(ctx context.Context, membership domain.WorkspaceUser) (bool, error) {
	if m.UpsertWorkspaceUserFn != nil {
		return m.UpsertWorkspaceUserFn(ctx, membership)
	}
	args := m.Called(ctx, membership)
	return args.Bool(0), args.Error(1)
}

func (m *MockWorkspaceRepository) DeleteWorkspaceUser(ctx context.Context, workspaceID, userID string) error {
	args := m.Called(ctx, workspaceID, userID)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) UpsertWorkspaceEntity(ctx context.Context, entity domain.WorkspaceEntity) error {
	if m.UpsertWorkspaceEntityFn != nil {
		return m.UpsertWorkspaceEntityFn(ctx, entity)
	}
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) DeleteWorkspace(ctx context.Context, workspaceID string) error {
	if m.DeleteWorkspaceFn != nil {
		return m.DeleteWorkspaceFn(ctx, workspaceID)
	}
	args := m.Called(ctx, workspaceID)
	return args.Error(0)
}

// --- Mock GraphAuthorizationRepository ---
type MockGraphAuthRepository struct {
	mock.Mock
}

func (m *MockGraphAuthRepository) RegisterAuthorization(ctx context.Context, scope string) error {
	args := m.Called(ctx, scope)
	return args.Error(0)
}

func (m *MockGraphAuthRepository) UnregisterAuthorization(ctx context.Context, scope string) error {
	args := m.Called(ctx, scope)
	return args.Error(0)
}

func (m *MockGraphAuthRepository) ListAuthorizations(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var scopes []string
	if args.Get(0) != nil {
		scopes = args.Get(0).([]string)
	}
	return scopes, args.Error(1)
}

// --- Test Suite ---
type WorkspaceServiceTestSuite struct {
	suite.Suite
	mockWorkspaceRepo *MockWorkspaceRepository
	mockGraphAuthRepo *MockGraphAuthRepository
	service           portssvc.WorkspaceSvcFacade
}

func (suite *WorkspaceServiceTestSuite) SetupTest() {
	suite.mockWorkspaceRepo = new(MockWorkspaceRepository)
	suite.mockGraphAuthRepo = new(MockGraphAuthRepository)
	suite.service = services.NewWorkspaceService(suite.mockWorkspaceRepo, suite.mockGraphAuthRepo)
}

// --- AddWorkspace Tests ---

func (suite *WorkspaceServiceTestSuite) TestAddWorkspace_Success() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	title := "Investigation Alpha"

	suite.mockWorkspaceRepo.On("SaveWorkspace", ctx, mock.MatchedBy(func(ws domain.Workspace) bool {
		return ws.DisplayTitle == title && ws.CreatorUserID == ownerID
	})).Return(nil).Once()
	suite.mockGraphAuthRepo.On("RegisterAuthorization", ctx, mock.MatchedBy(func(scope string) bool {
		return len(scope) > len(domain.WorkspaceIDPrefix) && scope[:len(domain.WorkspaceIDPrefix)] == domain.WorkspaceIDPrefix
	})).Return(nil).Once()
	suite.mockWorkspaceRepo.On("UpsertWorkspaceUser", ctx, mock.MatchedBy(func(mem domain.WorkspaceUser) bool {
		return mem.UserID == ownerID && mem.Access == domain.AccessWrite && mem.IsCreator
	})).Return(true, nil).Once()

	workspace, err := suite.service.AddWorkspace(ctx, title, ownerID)

	suite.Require().NoError(err)
	suite.Require().NotNil(workspace)
	suite.Equal(title, workspace.DisplayTitle)
	suite.Equal(ownerID, workspace.CreatorUserID)
	suite.Contains(workspace.WorkspaceID, domain.WorkspaceIDPrefix)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
	suite.mockGraphAuthRepo.AssertExpectations(suite.T())
}

func (suite *WorkspaceServiceTestSuite) TestAddWorkspace_AuthRegistrationFails_RollsBack() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	expectedErr := assert.AnError

	suite.mockWorkspaceRepo.On("SaveWorkspace", ctx, mock.AnythingOfType("domain.Workspace")).Return(nil).Once()
	suite.mockGraphAuthRepo.On("RegisterAuthorization", ctx, mock.AnythingOfType("string")).Return(expectedErr).Once()
	// The half-created workspace row must be torn down again.
	suite.mockWorkspaceRepo.On("DeleteWorkspace", ctx, mock.AnythingOfType("string")).Return(nil).Once()

	workspace, err := suite.service.AddWorkspace(ctx, "Doomed", ownerID)

	suite.Require().Error(err)
	suite.Nil(workspace)
	suite.ErrorIs(err, expectedErr)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
	suite.mockGraphAuthRepo.AssertExpectations(suite.T())
}

func (suite *WorkspaceServiceTestSuite) TestAddWorkspace_MembershipFails_RollsBackAuthAndRow() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	expectedErr := assert.AnError

	suite.mockWorkspaceRepo.On("SaveWorkspace", ctx, mock.AnythingOfType("domain.Workspace")).Return(nil).Once()
	suite.mockGraphAuthRepo.On("RegisterAuthorization", ctx, mock.AnythingOfType("string")).Return(nil).Once()
	suite.mockWorkspaceRepo.On("UpsertWorkspaceUser", ctx, mock.AnythingOfType("domain.WorkspaceUser")).Return(false, expectedErr).Once()
	suite.mockGraphAuthRepo.On("UnregisterAuthorization", ctx, mock.AnythingOfType("string")).Return(nil).Once()
	suite.mockWorkspaceRepo.On("DeleteWorkspace", ctx, mock.AnythingOfType("string")).Return(nil).Once()

	workspace, err := suite.service.AddWorkspace(ctx, "Doomed", ownerID)

	suite.Require().Error(err)
	suite.Nil(workspace)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
	suite.mockGraphAuthRepo.AssertExpectations(suite.T())
}

// --- FindWorkspaceByID Tests ---

func (suite *WorkspaceServiceTestSuite) TestFindWorkspaceByID_Member() {
	ctx := context.Background()
	workspaceID := domain.WorkspaceIDPrefix + uuid.NewString()
	userID := uuid.NewString()
	expected := &domain.Workspace{WorkspaceID: workspaceID, DisplayTitle: "Alpha"}

	suite.mockWorkspaceRepo.On("FindWorkspaceUser", ctx, workspaceID, userID).
		Return(&domain.WorkspaceUser{WorkspaceID: workspaceID, UserID: userID, Access: domain.AccessRead}, nil).Once()
	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, workspaceID).Return(expected, nil).Once()

	workspace, err := suite.service.FindWorkspaceByID(ctx, workspaceID, userID)

	suite.Require().NoError(err)
	suite.Equal(expected, workspace)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
}

func (suite *WorkspaceServiceTestSuite) TestFindWorkspaceByID_NonMemberGetsNotFound() {
	ctx := context.Background()
	workspaceID := domain.WorkspaceIDPrefix + uuid.NewString()
	userID := uuid.NewString()

	suite.mockWorkspaceRepo.On("FindWorkspaceUser", ctx, workspaceID, userID).Return(nil, apperrors.ErrNotFound).Once()

	workspace, err := suite.service.FindWorkspaceByID(ctx, workspaceID, userID)

	suite.Require().Error(err)
	suite.Nil(workspace)
	// Non-members must not be able to distinguish "exists" from "does not exist".
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.NotErrorIs(err, apperrors.ErrForbidden)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
}

// --- UpdateUserOnWorkspace Tests ---

func (suite *WorkspaceServiceTestSuite) TestUpdateUserOnWorkspace_AddNewMember() {
	ctx := context.Background()
	workspaceID := domain.WorkspaceIDPrefix + uuid.NewString()
	ownerID := uuid.NewString()
	targetID := uuid.NewString()

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, workspaceID).
		Return(&domain.Workspace{WorkspaceID: workspaceID, CreatorUserID: ownerID}, nil).Once()
	suite.mockWorkspaceRepo.On("UpsertWorkspaceUser", ctx, mock.MatchedBy(func(mem domain.WorkspaceUser) bool {
		return mem.UserID == targetID && mem.Access == domain.AccessRead
	})).Return(true, nil).Once()

	result, err := suite.service.UpdateUserOnWorkspace(ctx, workspaceID, targetID, domain.AccessRead, ownerID)

	suite.Require().NoError(err)
	suite.Equal(domain.UpdateUserOnWorkspaceResultAdd, result)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
}

func (suite *WorkspaceServiceTestSuite) TestUpdateUserOnWorkspace_UpdateExistingMember() {
	ctx := context.Background()
	workspaceID := domain.WorkspaceIDPrefix + uuid.NewString()
	ownerID := uuid.NewString()
	targetID := uuid.NewString()

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, workspaceID).
		Return(&domain.Workspace{WorkspaceID: workspaceID, CreatorUserID: ownerID}, nil).Once()
	suite.mockWorkspaceRepo.On("UpsertWorkspaceUser", ctx, mock.AnythingOfType("domain.WorkspaceUser")).Return(false, nil).Once()

	result, err := suite.service.UpdateUserOnWorkspace(ctx, workspaceID, targetID, domain.AccessWrite, ownerID)

	suite.Require().NoError(err)
	suite.Equal(domain.UpdateUserOnWorkspaceResultUpdate, result)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
}

func (suite *WorkspaceServiceTestSuite) TestUpdateUserOnWorkspace_ReaderDenied() {
	ctx := context.Background()
	workspaceID := domain.WorkspaceIDPrefix + uuid.NewString()
	ownerID := uuid.NewString()
	readerID := uuid.NewString()
	targetID := uuid.NewString()

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, workspaceID).
		Return(&domain.Workspace{WorkspaceID: workspaceID, CreatorUserID: ownerID}, nil).Once()
	suite.mockWorkspaceRepo.On("FindWorkspaceUser", ctx, workspaceID, readerID).
		Return(&domain.WorkspaceUser{WorkspaceID: workspaceID, UserID: readerID, Access: domain.AccessRead}, nil).Once()

	result, err := suite.service.UpdateUserOnWorkspace(ctx, workspaceID, targetID, domain.AccessWrite, readerID)

	suite.Require().Error(err)
	suite.Empty(result)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	var denied *apperrors.AccessDeniedError
	suite.Require().ErrorAs(err, &denied)
	suite.Equal(readerID, denied.UserID)
	suite.Equal(workspaceID, denied.ResourceID)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
}

func (suite *WorkspaceServiceTestSuite) TestUpdateUserOnWorkspace_RejectsInvalidAccess() {
	ctx := context.Background()

	result, err := suite.service.UpdateUserOnWorkspace(ctx, "ws", "target", domain.AccessNone, "actor")

	suite.Require().Error(err)
	suite.Empty(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
}

// --- DeleteUserFromWorkspace Tests ---

func (suite *WorkspaceServiceTestSuite) TestDeleteUserFromWorkspace_SelfRemovalSkipsAccessCheck() {
	ctx := context.Background()
	workspaceID := domain.WorkspaceIDPrefix + uuid.NewString()
	userID := uuid.NewString()

	// No FindWorkspaceByID expectation: removing yourself needs no access check.
	suite.mockWorkspaceRepo.On("DeleteWorkspaceUser", ctx, workspaceID, userID).Return(nil).Once()

	err := suite.service.DeleteUserFromWorkspace(ctx, workspaceID, userID, userID)

	suite.Require().NoError(err)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
}

func (suite *WorkspaceServiceTestSuite) TestDeleteUserFromWorkspace_NonWriterDenied() {
	ctx := context.Background()
	workspaceID := domain.WorkspaceIDPrefix + uuid.NewString()
	ownerID := uuid.NewString()
	readerID := uuid.NewString()
	targetID := uuid.NewString()

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, workspaceID).
		Return(&domain.Workspace{WorkspaceID: workspaceID, CreatorUserID: ownerID}, nil).Once()
	suite.mockWorkspaceRepo.On("FindWorkspaceUser", ctx, workspaceID, readerID).
		Return(&domain.WorkspaceUser{WorkspaceID: workspaceID, UserID: readerID, Access: domain.AccessRead}, nil).Once()

	err := suite.service.DeleteUserFromWorkspace(ctx, workspaceID, targetID, readerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
}

// --- DeleteWorkspace Tests ---

func (suite *WorkspaceServiceTestSuite) TestDeleteWorkspace_OwnerSucceeds() {
	ctx := context.Background()
	workspaceID := domain.WorkspaceIDPrefix + uuid.NewString()
	ownerID := uuid.NewString()

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, workspaceID).
		Return(&domain.Workspace{WorkspaceID: workspaceID, CreatorUserID: ownerID}, nil).Once()
	suite.mockWorkspaceRepo.On("DeleteWorkspace", ctx, workspaceID).Return(nil).Once()
	suite.mockGraphAuthRepo.On("UnregisterAuthorization", ctx, workspaceID).Return(nil).Once()

	err := suite.service.DeleteWorkspace(ctx, workspaceID, ownerID)

	suite.Require().NoError(err)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
	suite.mockGraphAuthRepo.AssertExpectations(suite.T())
}

func (suite *WorkspaceServiceTestSuite) TestDeleteWorkspace_NonOwnerDenied() {
	ctx := context.Background()
	workspaceID := domain.WorkspaceIDPrefix + uuid.NewString()
	ownerID := uuid.NewString()
	memberID := uuid.NewString()

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, workspaceID).
		Return(&domain.Workspace{WorkspaceID: workspaceID, CreatorUserID: ownerID}, nil).Once()

	err := suite.service.DeleteWorkspace(ctx, workspaceID, memberID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	var denied *apperrors.AccessDeniedError
	suite.Require().ErrorAs(err, &denied)
	suite.Equal(memberID, denied.UserID)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
	suite.mockGraphAuthRepo.AssertExpectations(suite.T())
}

// --- ListUserWorkspaces Tests ---

func (suite *WorkspaceServiceTestSuite) TestListUserWorkspaces_NilBecomesEmptySlice() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockWorkspaceRepo.On("ListWorkspacesByUserID", ctx, userID).Return(nil, nil).Once()

	workspaces, err := suite.service.ListUserWorkspaces(ctx, userID)

	suite.Require().NoError(err)
	suite.NotNil(workspaces)
	suite.Empty(workspaces)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
}

// --- TrackEntity Tests ---

func (suite *WorkspaceServiceTestSuite) TestTrackEntity_RecordsElement() {
	ctx := context.Background()
	workspaceID := domain.WorkspaceIDPrefix + uuid.NewString()
	ref := domain.ElementRef{Type: domain.ElementTypeVertex, ID: "v1"}

	suite.mockWorkspaceRepo.On("UpsertWorkspaceEntity", ctx, mock.MatchedBy(func(entity domain.WorkspaceEntity) bool {
		return entity.WorkspaceID == workspaceID && entity.ElementType == ref.Type && entity.ElementID == ref.ID
	})).Return(nil).Once()

	err := suite.service.TrackEntity(ctx, workspaceID, ref)

	suite.Require().NoError(err)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
}

func TestWorkspaceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WorkspaceServiceTestSuite))
}
