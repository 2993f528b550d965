package services

import (
	"context"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// ListUsers retrieves a paginated list of users, optionally filtered by role.
	ListUsers(ctx context.Context, params dto.ListUsersParams) ([]domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// Register creates an investor or entrepreneur account.
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)

	// UpdateProfile updates the caller's own profile.
	UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*domain.User, error)

	// SubmitKYC sends identity details to the verifier and stores the outcome.
	SubmitKYC(ctx context.Context, userID string, req dto.KYCSubmissionRequest) (*domain.User, error)
}

// UserAdminSvc defines moderation operations reserved for admins
type UserAdminSvc interface {
	// SetKYCStatus overrides the verification flag of a user.
	SetKYCStatus(ctx context.Context, adminID, userID string, verified bool) (*domain.User, error)

	// SetSuspended blocks or unblocks a user.
	SetSuspended(ctx context.Context, adminID, userID string, suspended bool) (*domain.User, error)

	// EnsureAdmin creates the admin account for email unless a user with that email exists.
	EnsureAdmin(ctx context.Context, email, password string) error
}

// UserLifecycleSvc defines operations for managing user lifecycle
type UserLifecycleSvc interface {
	// DeleteUser marks a user as deleted (soft delete).
	DeleteUser(ctx context.Context, userID string, requestingUserID string) error
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser authenticates a user with email and password.
	AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserAdminSvc
	UserLifecycleSvc
	UserAuthSvc
}
