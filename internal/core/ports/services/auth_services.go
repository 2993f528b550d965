package services

import (
	"context"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
)

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	// GenerateAccessToken issues a signed JWT carrying the user id and role.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
}
