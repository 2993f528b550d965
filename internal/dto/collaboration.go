package dto

import (
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
)

// CreateCollaborationRequest asks another user to collaborate.
type CreateCollaborationRequest struct {
	ReceiverID string `json:"receiverID" binding:"required"`
	Message    string `json:"message" binding:"max=1000"`
}

// ListCollaborationParams defines query parameters for listing requests.
type ListCollaborationParams struct {
	Direction string `form:"direction,default=incoming" binding:"oneof=incoming outgoing"`
	Status    string `form:"status" binding:"omitempty,oneof=pending accepted declined"`
	Limit     int    `form:"limit,default=20" binding:"min=1,max=100"`
	Offset    int    `form:"offset,default=0" binding:"min=0"`
}

// ListCollaborationResponse wraps a page of requests.
type ListCollaborationResponse struct {
	Requests []domain.CollaborationRequest `json:"requests"`
}
