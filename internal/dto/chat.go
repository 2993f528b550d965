package dto

import (
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
)

// SendMessageRequest sends a direct message. MessageID is generated by the
// client and makes resends idempotent.
type SendMessageRequest struct {
	MessageID  string `json:"messageID" binding:"required,uuid"`
	ReceiverID string `json:"receiverID" binding:"required"`
	Body       string `json:"body" binding:"required,max=4000"`
}

// ListMessagesParams defines query parameters for reading a conversation.
type ListMessagesParams struct {
	Limit     int     `form:"limit,default=50" binding:"min=1,max=200"`
	NextToken *string `form:"nextToken"`
}

// SendMessageResponse reports the stored message and whether it was a resend.
type SendMessageResponse struct {
	Message   domain.ChatMessage `json:"message"`
	Duplicate bool               `json:"duplicate"`
}

// ListMessagesResponse wraps a page of messages, newest first.
type ListMessagesResponse struct {
	Messages  []domain.ChatMessage `json:"messages"`
	NextToken *string              `json:"nextToken,omitempty"`
}

// ListConversationsResponse wraps the conversation summaries of a user.
type ListConversationsResponse struct {
	Conversations []domain.Conversation `json:"conversations"`
}

// DeliveryReceipt tells the sender that the receiver acknowledged a message.
type DeliveryReceipt struct {
	MessageID   string    `json:"messageID"`
	DeliveredAt time.Time `json:"deliveredAt"`
}

// TypingIndicator is relayed to the receiver and never stored.
type TypingIndicator struct {
	SenderID string `json:"senderID"`
}
