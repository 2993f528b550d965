package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
)

// ChatReader defines read operations for chat messages
type ChatReader interface {
	FindMessageByID(ctx context.Context, messageID string) (*domain.ChatMessage, error)

	// ListUndelivered returns messages addressed to receiverID that were never acknowledged, oldest first.
	ListUndelivered(ctx context.Context, receiverID string, limit int) ([]domain.ChatMessage, error)

	// ListConversation returns messages between two users, newest first.
	ListConversation(ctx context.Context, userID, partnerID string, limit int, nextToken *string) ([]domain.ChatMessage, *string, error)

	// ListConversations returns one summary per chat partner.
	ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error)
}

// ChatWriter defines write operations for chat messages
type ChatWriter interface {
	// SaveMessage stores msg unless a message with the same id exists.
	// It reports whether a row was inserted.
	SaveMessage(ctx context.Context, msg domain.ChatMessage) (bool, error)

	// MarkDelivered sets deliveredAt for a message addressed to receiverID.
	MarkDelivered(ctx context.Context, messageID, receiverID string, at time.Time) error
}

// ChatRepositoryFacade combines all chat repository interfaces
type ChatRepositoryFacade interface {
	ChatReader
	ChatWriter
}
