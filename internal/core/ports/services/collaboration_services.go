package services

import (
	"context"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
)

// CollaborationSvcFacade defines collaboration request operations
type CollaborationSvcFacade interface {
	CreateRequest(ctx context.Context, senderID string, req dto.CreateCollaborationRequest) (*domain.CollaborationRequest, error)
	ListRequests(ctx context.Context, userID string, params dto.ListCollaborationParams) ([]domain.CollaborationRequest, error)

	// Respond accepts or declines a pending request addressed to userID.
	Respond(ctx context.Context, userID, requestID string, accept bool) (*domain.CollaborationRequest, error)
}
