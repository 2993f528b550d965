package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by login email (case-insensitive).
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUsers retrieves a paginated list of users, optionally by role.
	FindUsers(ctx context.Context, role *domain.UserRole, limit int, offset int) ([]domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser updates profile fields and audit fields of an existing user.
	UpdateUser(ctx context.Context, user domain.User) error

	// SetKYCVerified records the identity verification outcome.
	SetKYCVerified(ctx context.Context, userID string, verified bool, at time.Time, updatedBy string) error

	// SetSuspended blocks or unblocks a user.
	SetSuspended(ctx context.Context, userID string, suspended bool, at time.Time, updatedBy string) error
}

// UserLifecycleManager defines operations for managing user lifecycle
type UserLifecycleManager interface {
	// MarkUserDeleted marks a user as deleted (soft delete).
	MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
// This is a facade for clients that need access to all operations
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	UserLifecycleManager
}
