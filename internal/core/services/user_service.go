package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/trustbridge_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/SscSPs/trustbridge_backend/internal/utils"
	"github.com/google/uuid"
)

// userService implements the UserSvcFacade interface
type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
	verifier gateways.KYCVerifier
}

// UserServiceOption is a functional option for configuring the user service
type UserServiceOption func(*userService)

// WithKYCVerifier sets the identity verifier used by SubmitKYC
func WithKYCVerifier(v gateways.KYCVerifier) UserServiceOption {
	return func(s *userService) {
		s.verifier = v
	}
}

// NewUserService creates a new user service with the provided options
func NewUserService(userRepo portsrepo.UserRepositoryFacade, options ...UserServiceOption) portssvc.UserSvcFacade {
	svc := &userService{userRepo: userRepo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure userService implements the UserSvcFacade interface
var _ portssvc.UserSvcFacade = (*userService)(nil)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	if req.Role != domain.RoleInvestor && req.Role != domain.RoleEntrepreneur {
		return nil, fmt.Errorf("%w: role must be investor or entrepreneur", apperrors.ErrValidation)
	}
	return s.createUser(ctx, normalizeEmail(req.Email), req.Password, strings.TrimSpace(req.Name), req.Role)
}

func (s *userService) createUser(ctx context.Context, email, password, name string, role domain.UserRole) (*domain.User, error) {
	_, err := s.userRepo.FindUserByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("%w: email %s is already registered", apperrors.ErrDuplicate, email)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check email uniqueness")
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, apperrors.NewAppError(500, "failed to hash password", err)
	}

	now := time.Now().UTC()
	userID := uuid.NewString()
	user := domain.User{
		UserID:       userID,
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
		AuditFields:  domain.NewAuditFields(userID, now),
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save user", slog.String("user_id", userID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "User registered", slog.String("user_id", userID), slog.String("role", string(role)))
	return &user, nil
}

func (s *userService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	existing, err := s.userRepo.FindUserByEmail(ctx, email)
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			s.LogInfo(ctx, "Admin email belongs to a non-admin account, skipping", slog.String("user_id", existing.UserID))
		}
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	_, err = s.createUser(ctx, email, password, "Administrator", domain.RoleAdmin)
	return err
}

func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			utils.CheckPasswordHash(password, "")
			return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
		}
		s.LogError(ctx, err, "Failed to load user for login")
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}
	if user.Suspended {
		return nil, fmt.Errorf("%w: account is suspended", apperrors.ErrForbidden)
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get user", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, params dto.ListUsersParams) ([]domain.User, error) {
	var role *domain.UserRole
	if params.Role != "" {
		r := domain.UserRole(params.Role)
		if !r.IsValid() {
			return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, params.Role)
		}
		role = &r
	}
	users, err := s.userRepo.FindUsers(ctx, role, params.Limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list users")
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated := *user
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	updated.Profile = req.Apply(user.Profile)
	updated.Touch(userID, time.Now().UTC())

	if err := s.userRepo.UpdateUser(ctx, updated); err != nil {
		s.LogError(ctx, err, "Failed to update profile", slog.String("user_id", userID))
		return nil, err
	}
	s.LogDebug(ctx, "Profile updated", slog.String("user_id", userID))
	return &updated, nil
}

func (s *userService) SubmitKYC(ctx context.Context, userID string, req dto.KYCSubmissionRequest) (*domain.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.KYCVerified {
		return user, nil
	}
	if s.verifier == nil {
		return nil, apperrors.NewAppError(503, "identity verification is not available", nil)
	}

	verified, err := s.verifier.Verify(ctx, domain.KYCSubmission{
		UserID:         userID,
		FullName:       req.FullName,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		Country:        strings.ToUpper(req.Country),
	})
	if err != nil {
		s.LogError(ctx, err, "Identity verification failed", slog.String("user_id", userID))
		return nil, err
	}
	if !verified {
		return nil, fmt.Errorf("%w: identity could not be verified", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	if err := s.userRepo.SetKYCVerified(ctx, userID, true, now, userID); err != nil {
		s.LogError(ctx, err, "Failed to store KYC result", slog.String("user_id", userID))
		return nil, err
	}
	user.KYCVerified = true
	user.KYCVerifiedAt = &now
	s.LogInfo(ctx, "User verified", slog.String("user_id", userID))
	return user, nil
}

func (s *userService) SetKYCStatus(ctx context.Context, adminID, userID string, verified bool) (*domain.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.userRepo.SetKYCVerified(ctx, userID, verified, now, adminID); err != nil {
		s.LogError(ctx, err, "Failed to set KYC status", slog.String("user_id", userID))
		return nil, err
	}
	user.KYCVerified = verified
	user.KYCVerifiedAt = nil
	if verified {
		user.KYCVerifiedAt = &now
	}
	user.Touch(adminID, now)
	s.LogInfo(ctx, "KYC status overridden",
		slog.String("user_id", userID),
		slog.String("admin_id", adminID),
		slog.Bool("verified", verified))
	return user, nil
}

func (s *userService) SetSuspended(ctx context.Context, adminID, userID string, suspended bool) (*domain.User, error) {
	if adminID == userID && suspended {
		return nil, fmt.Errorf("%w: admins cannot suspend themselves", apperrors.ErrValidation)
	}
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.userRepo.SetSuspended(ctx, userID, suspended, now, adminID); err != nil {
		s.LogError(ctx, err, "Failed to set suspension", slog.String("user_id", userID))
		return nil, err
	}
	user.Suspended = suspended
	user.Touch(adminID, now)
	s.LogInfo(ctx, "User suspension changed",
		slog.String("user_id", userID),
		slog.String("admin_id", adminID),
		slog.Bool("suspended", suspended))
	return user, nil
}

// DeleteUser marks a user as deleted (soft delete). Users can only delete themselves.
func (s *userService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	if userID != requestingUserID {
		return fmt.Errorf("%w: users can only delete their own account", apperrors.ErrForbidden)
	}
	if err := s.userRepo.MarkUserDeleted(ctx, userID, time.Now().UTC(), requestingUserID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete user", slog.String("user_id", userID))
		}
		return err
	}
	s.LogInfo(ctx, "User deleted", slog.String("user_id", userID))
	return nil
}
