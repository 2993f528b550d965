package mapping

import (
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/models"
)

func ToModelChatMessage(d domain.ChatMessage) models.ChatMessage {
	return models.ChatMessage{
		MessageID:   d.MessageID,
		SenderID:    d.SenderID,
		ReceiverID:  d.ReceiverID,
		Body:        d.Body,
		SentAt:      d.SentAt,
		DeliveredAt: d.DeliveredAt,
	}
}

func ToDomainChatMessage(m models.ChatMessage) domain.ChatMessage {
	return domain.ChatMessage{
		MessageID:   m.MessageID,
		SenderID:    m.SenderID,
		ReceiverID:  m.ReceiverID,
		Body:        m.Body,
		SentAt:      m.SentAt,
		DeliveredAt: m.DeliveredAt,
	}
}

func ToDomainChatMessageSlice(ms []models.ChatMessage) []domain.ChatMessage {
	ds := make([]domain.ChatMessage, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainChatMessage(m)
	}
	return ds
}
