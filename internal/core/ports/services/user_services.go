package services

import (
	"context"
	"time"

	"github.com/bings/visallo/internal/core/domain"
)

// UserSvcFacade defines operations on the user directory.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, username, name, password, creatorUserID string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)

	// AuthenticateUser verifies the password and returns the user, or
	// apperrors.ErrUnauthorized on mismatch.
	AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error)

	// SetRefreshToken stores the hashed refresh token; nil clears it.
	SetRefreshToken(ctx context.Context, userID string, refreshTokenHash *string, expiryTime *time.Time) error

	// FindOrCreateGoogleUser resolves a verified Google identity to a local
	// user, creating one on first sign-in.
	FindOrCreateGoogleUser(ctx context.Context, info *domain.GoogleUserInfo) (*domain.User, error)
}
