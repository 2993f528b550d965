package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/trustbridge_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/SscSPs/trustbridge_backend/internal/platform/metrics"
)

// pendingRedeliveryLimit caps the backlog pushed to a user on join.
const pendingRedeliveryLimit = 500

// chatService implements the ChatSvcFacade interface
type chatService struct {
	BaseService
	chatRepo portsrepo.ChatRepositoryFacade
	userRepo portsrepo.UserReader
}

// ChatServiceOption is a functional option for configuring the chat service
type ChatServiceOption func(*chatService)

// WithChatNotifier sets the transport used to reach live connections
func WithChatNotifier(n portssvc.ChatNotifier) ChatServiceOption {
	return func(s *chatService) {
		s.Notifier = n
	}
}

// NewChatService creates a new chat service with the provided options
func NewChatService(chatRepo portsrepo.ChatRepositoryFacade, userRepo portsrepo.UserReader, options ...ChatServiceOption) portssvc.ChatSvcFacade {
	svc := &chatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure chatService implements the ChatSvcFacade interface
var _ portssvc.ChatSvcFacade = (*chatService)(nil)

func (s *chatService) push(userID, event string, payload any) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Push(userID, event, payload)
}

func (s *chatService) SendMessage(ctx context.Context, senderID string, req dto.SendMessageRequest) (*domain.ChatMessage, bool, error) {
	msg := domain.ChatMessage{
		MessageID:  req.MessageID,
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Body:       req.Body,
		SentAt:     time.Now().UTC(),
	}
	if err := msg.Validate(); err != nil {
		metrics.ChatMessages.WithLabelValues("invalid").Inc()
		return nil, false, err
	}
	if _, err := s.RequireActiveUser(ctx, s.userRepo, senderID); err != nil {
		return nil, false, err
	}

	if _, err := s.userRepo.FindUserByID(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: receiver %s does not exist", apperrors.ErrValidation, req.ReceiverID)
		}
		s.LogError(ctx, err, "Failed to load chat receiver", slog.String("receiver_id", req.ReceiverID))
		return nil, false, err
	}

	inserted, err := s.chatRepo.SaveMessage(ctx, msg)
	if err != nil {
		s.LogError(ctx, err, "Failed to store chat message", slog.String("message_id", msg.MessageID))
		return nil, false, err
	}

	if !inserted {
		existing, err := s.chatRepo.FindMessageByID(ctx, msg.MessageID)
		if err != nil {
			s.LogError(ctx, err, "Failed to load duplicate chat message", slog.String("message_id", msg.MessageID))
			return nil, false, err
		}
		if existing.SenderID != senderID || existing.ReceiverID != req.ReceiverID {
			metrics.ChatMessages.WithLabelValues("id_collision").Inc()
			return nil, false, fmt.Errorf("%w: message id %s is already in use", apperrors.ErrDuplicate, msg.MessageID)
		}
		metrics.ChatMessages.WithLabelValues("duplicate").Inc()
		// The sender is retrying; the receiver may still be waiting for it.
		if existing.DeliveredAt == nil {
			s.push(existing.ReceiverID, portssvc.ChatEventMessage, *existing)
		}
		return existing, true, nil
	}

	metrics.ChatMessages.WithLabelValues("stored").Inc()
	s.push(msg.ReceiverID, portssvc.ChatEventMessage, msg)
	s.LogDebug(ctx, "Chat message stored",
		slog.String("message_id", msg.MessageID),
		slog.String("receiver_id", msg.ReceiverID))
	return &msg, false, nil
}

func (s *chatService) MarkDelivered(ctx context.Context, receiverID, messageID string) error {
	msg, err := s.chatRepo.FindMessageByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.ReceiverID != receiverID {
		return fmt.Errorf("%w: only the receiver can acknowledge message %s", apperrors.ErrForbidden, messageID)
	}
	if _, err := s.RequireActiveUser(ctx, s.userRepo, receiverID); err != nil {
		return err
	}
	if msg.DeliveredAt != nil {
		return nil
	}

	now := time.Now().UTC()
	if err := s.chatRepo.MarkDelivered(ctx, messageID, receiverID, now); err != nil {
		s.LogError(ctx, err, "Failed to mark message delivered", slog.String("message_id", messageID))
		return err
	}
	s.push(msg.SenderID, portssvc.ChatEventDelivered, dto.DeliveryReceipt{MessageID: messageID, DeliveredAt: now})
	return nil
}

func (s *chatService) Typing(ctx context.Context, senderID, receiverID string) error {
	if receiverID == "" || receiverID == senderID {
		return fmt.Errorf("%w: invalid typing receiver", apperrors.ErrValidation)
	}
	if _, err := s.RequireActiveUser(ctx, s.userRepo, senderID); err != nil {
		return err
	}
	s.push(receiverID, portssvc.ChatEventTyping, dto.TypingIndicator{SenderID: senderID})
	return nil
}

func (s *chatService) PendingMessages(ctx context.Context, userID string) ([]domain.ChatMessage, error) {
	msgs, err := s.chatRepo.ListUndelivered(ctx, userID, pendingRedeliveryLimit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list undelivered messages", slog.String("user_id", userID))
		return nil, err
	}
	return msgs, nil
}

func (s *chatService) ListConversation(ctx context.Context, userID, partnerID string, params dto.ListMessagesParams) ([]domain.ChatMessage, *string, error) {
	msgs, nextToken, err := s.chatRepo.ListConversation(ctx, userID, partnerID, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list conversation",
			slog.String("user_id", userID),
			slog.String("partner_id", partnerID))
		return nil, nil, err
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	return msgs, nextToken, nil
}

func (s *chatService) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	convs, err := s.chatRepo.ListConversations(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list conversations", slog.String("user_id", userID))
		return nil, err
	}
	if convs == nil {
		convs = []domain.Conversation{}
	}
	return convs, nil
}
