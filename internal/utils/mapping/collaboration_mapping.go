package mapping

import (
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/models"
)

func ToModelCollaborationRequest(d domain.CollaborationRequest) models.CollaborationRequest {
	return models.CollaborationRequest{
		RequestID:   d.RequestID,
		SenderID:    d.SenderID,
		ReceiverID:  d.ReceiverID,
		Message:     d.Message,
		Status:      string(d.Status),
		CreatedAt:   d.CreatedAt,
		RespondedAt: d.RespondedAt,
	}
}

func ToDomainCollaborationRequest(m models.CollaborationRequest) domain.CollaborationRequest {
	return domain.CollaborationRequest{
		RequestID:   m.RequestID,
		SenderID:    m.SenderID,
		ReceiverID:  m.ReceiverID,
		Message:     m.Message,
		Status:      domain.CollaborationStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		RespondedAt: m.RespondedAt,
	}
}
