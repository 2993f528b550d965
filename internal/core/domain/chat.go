package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
)

// MaxChatMessageLength is the longest accepted message body, in runes.
const MaxChatMessageLength = 4000

// ChatMessage is a direct message between two users. MessageID is chosen by the
// sender and is the deduplication key for redelivery.
type ChatMessage struct {
	MessageID   string     `json:"messageID"`
	SenderID    string     `json:"senderID"`
	ReceiverID  string     `json:"receiverID"`
	Body        string     `json:"body"`
	SentAt      time.Time  `json:"sentAt"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
}

// Validate checks the message before it is stored.
func (m ChatMessage) Validate() error {
	if m.MessageID == "" {
		return fmt.Errorf("%w: messageID is required", apperrors.ErrValidation)
	}
	if m.SenderID == "" || m.ReceiverID == "" {
		return fmt.Errorf("%w: sender and receiver are required", apperrors.ErrValidation)
	}
	if m.SenderID == m.ReceiverID {
		return fmt.Errorf("%w: cannot message yourself", apperrors.ErrValidation)
	}
	if strings.TrimSpace(m.Body) == "" {
		return fmt.Errorf("%w: message body is empty", apperrors.ErrValidation)
	}
	if utf8.RuneCountInString(m.Body) > MaxChatMessageLength {
		return fmt.Errorf("%w: message body exceeds %d characters", apperrors.ErrValidation, MaxChatMessageLength)
	}
	return nil
}

// Conversation summarises the chat with one partner.
type Conversation struct {
	PartnerID   string      `json:"partnerID"`
	LastMessage ChatMessage `json:"lastMessage"`
	Undelivered int         `json:"undelivered"`
}
