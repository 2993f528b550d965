package repositories

import (
	"context"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
)

// CollaborationReader defines read operations for collaboration requests
type CollaborationReader interface {
	FindRequestByID(ctx context.Context, requestID string) (*domain.CollaborationRequest, error)

	// ListRequests returns requests received (incoming) or sent by userID, newest first.
	ListRequests(ctx context.Context, userID string, incoming bool, status *domain.CollaborationStatus, limit, offset int) ([]domain.CollaborationRequest, error)
}

// CollaborationWriter defines write operations for collaboration requests
type CollaborationWriter interface {
	// SaveRequest inserts a request; a pending duplicate yields apperrors.ErrDuplicate.
	SaveRequest(ctx context.Context, req domain.CollaborationRequest) error

	// UpdateRequestStatus stores a response to a pending request.
	UpdateRequestStatus(ctx context.Context, req domain.CollaborationRequest) error
}

// CollaborationRepositoryFacade combines all collaboration repository interfaces
type CollaborationRepositoryFacade interface {
	CollaborationReader
	CollaborationWriter
}
