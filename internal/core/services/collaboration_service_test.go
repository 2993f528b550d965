package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/core/services"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CollaborationServiceTestSuite struct {
	suite.Suite
	collabRepo *MockCollaborationRepository
	userRepo   *MockUserRepository
	publisher  *MockEventPublisher
	service    portssvc.CollaborationSvcFacade
}

func (s *CollaborationServiceTestSuite) SetupTest() {
	s.collabRepo = new(MockCollaborationRepository)
	s.userRepo = new(MockUserRepository)
	s.publisher = new(MockEventPublisher)
	s.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	s.service = services.NewCollaborationService(s.collabRepo, s.userRepo, services.WithCollaborationEventPublisher(s.publisher))
}

func (s *CollaborationServiceTestSuite) TestCreateRequest() {
	tests := []struct {
		name         string
		receiverRole domain.UserRole
		saveErr      error
		expectErr    error
	}{
		{name: "investor to entrepreneur", receiverRole: domain.RoleEntrepreneur},
		{name: "same role", receiverRole: domain.RoleInvestor, expectErr: apperrors.ErrValidation},
		{name: "admin receiver", receiverRole: domain.RoleAdmin, expectErr: apperrors.ErrValidation},
		{name: "pending duplicate", receiverRole: domain.RoleEntrepreneur, saveErr: apperrors.ErrDuplicate, expectErr: apperrors.ErrDuplicate},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			ctx := context.Background()
			s.userRepo.On("FindUserByID", ctx, investorID).Return(&domain.User{UserID: investorID, Role: domain.RoleInvestor, Name: "Ivy"}, nil).Once()
			s.userRepo.On("FindUserByID", ctx, "receiver-1").Return(&domain.User{UserID: "receiver-1", Role: tt.receiverRole}, nil).Once()
			s.collabRepo.On("SaveRequest", ctx, mock.MatchedBy(func(r domain.CollaborationRequest) bool {
				return r.Status == domain.CollaborationPending && r.SenderID == investorID
			})).Return(tt.saveErr).Maybe()

			req, err := s.service.CreateRequest(ctx, investorID, dto.CreateCollaborationRequest{ReceiverID: "receiver-1", Message: "Let's talk"})

			if tt.expectErr != nil {
				s.ErrorIs(err, tt.expectErr)
				s.Nil(req)
				return
			}
			s.Require().NoError(err)
			s.Equal("receiver-1", req.ReceiverID)
			s.publisher.AssertCalled(s.T(), "Publish", ctx, mock.MatchedBy(func(e domain.DomainEvent) bool {
				return e.Type == domain.EventCollaborationRequested
			}))
		})
	}
}

func (s *CollaborationServiceTestSuite) TestRespond_ReceiverOnly() {
	ctx := context.Background()
	pending := &domain.CollaborationRequest{RequestID: "r-1", SenderID: investorID, ReceiverID: entrepreneurID, Status: domain.CollaborationPending}
	s.collabRepo.On("FindRequestByID", ctx, "r-1").Return(pending, nil)
	activeUser(s.userRepo, entrepreneurID, domain.RoleEntrepreneur)

	_, err := s.service.Respond(ctx, investorID, "r-1", true)
	s.ErrorIs(err, apperrors.ErrForbidden)

	s.collabRepo.On("UpdateRequestStatus", ctx, mock.MatchedBy(func(r domain.CollaborationRequest) bool {
		return r.Status == domain.CollaborationAccepted && r.RespondedAt != nil
	})).Return(nil).Once()

	accepted, err := s.service.Respond(ctx, entrepreneurID, "r-1", true)
	s.Require().NoError(err)
	s.Equal(domain.CollaborationAccepted, accepted.Status)
	s.Equal(domain.CollaborationPending, pending.Status)
}

func (s *CollaborationServiceTestSuite) TestSuspendedUserCannotCollaborate() {
	ctx := context.Background()
	s.userRepo.On("FindUserByID", ctx, entrepreneurID).Return(&domain.User{UserID: entrepreneurID, Role: domain.RoleEntrepreneur, Suspended: true}, nil)
	pending := &domain.CollaborationRequest{RequestID: "r-1", SenderID: investorID, ReceiverID: entrepreneurID, Status: domain.CollaborationPending}
	s.collabRepo.On("FindRequestByID", ctx, "r-1").Return(pending, nil).Once()

	answered, err := s.service.Respond(ctx, entrepreneurID, "r-1", true)
	s.Nil(answered)
	s.ErrorIs(err, apperrors.ErrForbidden)

	created, err := s.service.CreateRequest(ctx, entrepreneurID, dto.CreateCollaborationRequest{ReceiverID: investorID, Message: "hi"})
	s.Nil(created)
	s.ErrorIs(err, apperrors.ErrForbidden)

	s.collabRepo.AssertNotCalled(s.T(), "UpdateRequestStatus", mock.Anything, mock.Anything)
	s.collabRepo.AssertNotCalled(s.T(), "SaveRequest", mock.Anything, mock.Anything)
}

func (s *CollaborationServiceTestSuite) TestListRequests_Direction() {
	ctx := context.Background()
	s.collabRepo.On("ListRequests", ctx, investorID, false, (*domain.CollaborationStatus)(nil), 20, 0).Return(nil, nil).Once()

	reqs, err := s.service.ListRequests(ctx, investorID, dto.ListCollaborationParams{Direction: "outgoing", Limit: 20})

	s.Require().NoError(err)
	s.NotNil(reqs)
	s.collabRepo.AssertExpectations(s.T())
}

func TestCollaborationService(t *testing.T) {
	suite.Run(t, new(CollaborationServiceTestSuite))
}
