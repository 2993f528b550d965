package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/trustbridge_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/google/uuid"
)

// collaborationService implements the CollaborationSvcFacade interface
type collaborationService struct {
	BaseService
	collabRepo portsrepo.CollaborationRepositoryFacade
	userRepo   portsrepo.UserReader
}

// CollaborationServiceOption is a functional option for configuring the collaboration service
type CollaborationServiceOption func(*collaborationService)

// WithCollaborationEventPublisher adds the domain event publisher
func WithCollaborationEventPublisher(p gateways.EventPublisher) CollaborationServiceOption {
	return func(s *collaborationService) {
		s.Events = p
	}
}

// WithCollaborationNotifier adds live notifications to the receiver
func WithCollaborationNotifier(n portssvc.ChatNotifier) CollaborationServiceOption {
	return func(s *collaborationService) {
		s.Notifier = n
	}
}

// NewCollaborationService creates a new collaboration service with the provided options
func NewCollaborationService(collabRepo portsrepo.CollaborationRepositoryFacade, userRepo portsrepo.UserReader, options ...CollaborationServiceOption) portssvc.CollaborationSvcFacade {
	svc := &collaborationService{
		collabRepo: collabRepo,
		userRepo:   userRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure collaborationService implements the CollaborationSvcFacade interface
var _ portssvc.CollaborationSvcFacade = (*collaborationService)(nil)

func (s *collaborationService) CreateRequest(ctx context.Context, senderID string, req dto.CreateCollaborationRequest) (*domain.CollaborationRequest, error) {
	if senderID == req.ReceiverID {
		return nil, fmt.Errorf("%w: cannot send a collaboration request to yourself", apperrors.ErrValidation)
	}
	sender, err := s.RequireActiveUser(ctx, s.userRepo, senderID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.userRepo.FindUserByID(ctx, req.ReceiverID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: receiver %s does not exist", apperrors.ErrValidation, req.ReceiverID)
		}
		s.LogError(ctx, err, "Failed to load receiver", slog.String("receiver_id", req.ReceiverID))
		return nil, err
	}
	if !domain.CanCollaborate(sender.Role, receiver.Role) {
		return nil, fmt.Errorf("%w: collaboration requires one investor and one entrepreneur", apperrors.ErrValidation)
	}

	request := domain.CollaborationRequest{
		RequestID:  uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiver.UserID,
		Message:    req.Message,
		Status:     domain.CollaborationPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.collabRepo.SaveRequest(ctx, request); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save collaboration request", slog.String("request_id", request.RequestID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Collaboration requested",
		slog.String("request_id", request.RequestID),
		slog.String("receiver_id", request.ReceiverID))
	s.PublishEvent(ctx, domain.EventCollaborationRequested, request.RequestID, senderID, []string{request.ReceiverID}, map[string]any{
		"senderName": sender.Name,
	})
	return &request, nil
}

func (s *collaborationService) ListRequests(ctx context.Context, userID string, params dto.ListCollaborationParams) ([]domain.CollaborationRequest, error) {
	var status *domain.CollaborationStatus
	if params.Status != "" {
		st := domain.CollaborationStatus(params.Status)
		status = &st
	}
	requests, err := s.collabRepo.ListRequests(ctx, userID, params.Direction != "outgoing", status, params.Limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list collaboration requests", slog.String("user_id", userID))
		return nil, err
	}
	if requests == nil {
		requests = []domain.CollaborationRequest{}
	}
	return requests, nil
}

func (s *collaborationService) Respond(ctx context.Context, userID, requestID string, accept bool) (*domain.CollaborationRequest, error) {
	request, err := s.collabRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	responded, err := request.Respond(userID, accept, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if _, err := s.RequireActiveUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	if err := s.collabRepo.UpdateRequestStatus(ctx, responded); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to update collaboration request", slog.String("request_id", requestID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Collaboration request answered",
		slog.String("request_id", requestID),
		slog.String("status", string(responded.Status)))
	if s.Notifier != nil {
		s.Notifier.Push(responded.SenderID, portssvc.ChatEventNotification, responded)
	}
	return &responded, nil
}
