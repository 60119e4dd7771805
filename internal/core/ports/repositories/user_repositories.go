package repositories

import (
	"context"
	"time"

	"github.com/bings/visallo/internal/core/domain"
)

// UserRepositoryFacade defines persistence operations for the user directory.
type UserRepositoryFacade interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)

	// UpdateRefreshToken stores the hashed refresh token and its expiry; both nil
	// clears the stored token.
	UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash *string, expiryTime *time.Time) error
}
