package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bings/visallo/internal/apperrors"
	"github.com/bings/visallo/internal/core/domain"
	portsrepo "github.com/bings/visallo/internal/core/ports/repositories"
)

// UserRepository is a thread-safe in-memory user directory.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserRepository creates an empty in-memory user directory.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

var _ portsrepo.UserRepositoryFacade = (*UserRepository)(nil)

// SaveUser creates or replaces the user row.
func (r *UserRepository) SaveUser(ctx context.Context, user domain.User) error {
	if user.UserID == "" {
		return apperrors.NewValidationFailedError("user id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
	return nil
}

// FindUserByID returns the user or apperrors.ErrNotFound.
func (r *UserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok || u.DeletedAt != nil {
		return nil, apperrors.NewNotFoundError("user " + userID + " not found")
	}
	return &u, nil
}

// FindUserByUsername returns the user or apperrors.ErrNotFound.
func (r *UserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username && u.DeletedAt == nil {
			user := u
			return &user, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user " + username + " not found")
}

// FindUserByEmail returns the user or apperrors.ErrNotFound.
func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email && u.DeletedAt == nil {
			user := u
			return &user, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user with email " + email + " not found")
}

// ListUsers returns a page of users ordered by user id.
func (r *UserRepository) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		if u.DeletedAt == nil {
			all = append(all, u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })

	if offset >= len(all) {
		return []domain.User{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

// UpdateRefreshToken stores the hashed refresh token and its expiry; both nil
// clears the stored token.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash *string, expiryTime *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok || u.DeletedAt != nil {
		return apperrors.NewNotFoundError("user " + userID + " not found")
	}
	if refreshTokenHash == nil {
		u.RefreshTokenHash = ""
		u.RefreshTokenExpiryTime = nil
	} else {
		u.RefreshTokenHash = *refreshTokenHash
		u.RefreshTokenExpiryTime = expiryTime
	}
	u.LastUpdatedAt = time.Now()
	r.users[userID] = u
	return nil
}
