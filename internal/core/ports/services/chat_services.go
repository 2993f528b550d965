package services

import (
	"context"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
)

// Chat event names shared by the realtime transport and its clients.
const (
	ChatEventMessage   = "message"
	ChatEventAck       = "ack"
	ChatEventDelivered = "delivered"
	ChatEventTyping    = "typing"
	ChatEventError     = "error"

	// ChatEventNotification carries a domain event to the users it concerns.
	ChatEventNotification = "notification"
)

// ChatNotifier pushes events to the live connections of a user. It returns the
// number of connections the event was queued on.
type ChatNotifier interface {
	Push(userID string, event string, payload any) int
}

// ChatSvcFacade defines chat operations. Delivery is at-least-once: messages
// are stored before they are pushed, and clients dedup by message id.
type ChatSvcFacade interface {
	// SendMessage stores and pushes a message. The bool reports a resend of a known message id.
	SendMessage(ctx context.Context, senderID string, req dto.SendMessageRequest) (*domain.ChatMessage, bool, error)

	// MarkDelivered records the receiver's acknowledgement.
	MarkDelivered(ctx context.Context, receiverID, messageID string) error

	// Typing relays a typing indicator to the receiver's live connections.
	Typing(ctx context.Context, senderID, receiverID string) error

	// PendingMessages returns the messages to redeliver when userID joins.
	PendingMessages(ctx context.Context, userID string) ([]domain.ChatMessage, error)

	ListConversation(ctx context.Context, userID, partnerID string, params dto.ListMessagesParams) ([]domain.ChatMessage, *string, error)
	ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error)
}
