package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/trustbridge_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/core/services"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	investorID     = "investor-1"
	entrepreneurID = "entrepreneur-1"
)

var (
	investor     = domain.Principal{UserID: investorID, Role: domain.RoleInvestor}
	entrepreneur = domain.Principal{UserID: entrepreneurID, Role: domain.RoleEntrepreneur}
	admin        = domain.Principal{UserID: "admin-1", Role: domain.RoleAdmin}
)

func seedDeal(status domain.DealStatus, lastActionBy domain.PartyRole, version int64) *domain.Deal {
	terms := domain.DealProposal{
		InvestmentAmount:  decimal.NewFromInt(100000),
		EquityOffered:     decimal.NewFromInt(10),
		PreMoneyValuation: decimal.NewFromInt(900000),
		InvestmentType:    domain.InvestmentEquity,
		Stage:             domain.StageSeed,
	}.Finalize()
	return &domain.Deal{
		DealID:             "deal-1",
		InvestorID:         investorID,
		EntrepreneurID:     entrepreneurID,
		Terms:              terms,
		BaseTerms:          terms,
		Status:             status,
		LastActionBy:       lastActionBy,
		NegotiationHistory: []domain.NegotiationEntry{},
		PaymentStatus:      domain.PaymentStatusNone,
		Version:            version,
	}
}

type DealServiceTestSuite struct {
	suite.Suite
	dealRepo  *MockDealRepository
	userRepo  *MockUserRepository
	publisher *MockEventPublisher
	notifier  *MockNotifier
	service   portssvc.DealSvcFacade
}

func (s *DealServiceTestSuite) SetupTest() {
	s.dealRepo = new(MockDealRepository)
	s.userRepo = new(MockUserRepository)
	s.publisher = new(MockEventPublisher)
	s.notifier = new(MockNotifier)
	s.service = services.NewDealService(s.dealRepo, s.userRepo,
		services.WithDealEventPublisher(s.publisher),
		services.WithDealNotifier(s.notifier))
	s.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	s.notifier.On("Push", mock.Anything, portssvc.ChatEventNotification, mock.Anything).Return(1).Maybe()
}

func (s *DealServiceTestSuite) activeParties() {
	activeUser(s.userRepo, investorID, domain.RoleInvestor)
	activeUser(s.userRepo, entrepreneurID, domain.RoleEntrepreneur)
}

func (s *DealServiceTestSuite) TestCreateDeal_DerivesPostMoney() {
	ctx := context.Background()
	s.userRepo.On("FindUserByID", ctx, investorID).Return(&domain.User{UserID: investorID, Role: domain.RoleInvestor}, nil).Once()
	s.userRepo.On("FindUserByID", ctx, entrepreneurID).Return(&domain.User{UserID: entrepreneurID, Role: domain.RoleEntrepreneur}, nil).Once()
	s.dealRepo.On("SaveDeal", ctx, mock.MatchedBy(func(d domain.Deal) bool {
		return d.Status == domain.DealStatusPending && d.Version == 1 &&
			d.Terms.PostMoneyValuation.Equal(decimal.NewFromInt(1000000))
	})).Return(nil).Once()

	req := dto.CreateDealRequest{
		EntrepreneurID: entrepreneurID,
		DealTermsRequest: dto.DealTermsRequest{
			InvestmentAmount:  decimal.NewFromInt(100000),
			EquityOffered:     decimal.NewFromInt(10),
			PreMoneyValuation: decimal.NewFromInt(900000),
			InvestmentType:    domain.InvestmentEquity,
			Stage:             domain.StageSeed,
		},
	}
	deal, err := s.service.CreateDeal(ctx, investor, req)

	s.Require().NoError(err)
	s.Equal(investorID, deal.InvestorID)
	s.Empty(deal.LastActionBy)
	s.dealRepo.AssertExpectations(s.T())
	s.publisher.AssertCalled(s.T(), "Publish", ctx, mock.MatchedBy(func(e domain.DomainEvent) bool {
		return e.Type == domain.EventDealCreated && e.AggregateID == deal.DealID
	}))
}

func (s *DealServiceTestSuite) TestCreateDeal_EntrepreneurCannotCreate() {
	deal, err := s.service.CreateDeal(context.Background(), entrepreneur, dto.CreateDealRequest{EntrepreneurID: investorID})

	s.Nil(deal)
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.dealRepo.AssertNotCalled(s.T(), "SaveDeal", mock.Anything, mock.Anything)
}

func (s *DealServiceTestSuite) TestCreateDeal_ReceiverMustBeEntrepreneur() {
	ctx := context.Background()
	s.userRepo.On("FindUserByID", ctx, investorID).Return(&domain.User{UserID: investorID, Role: domain.RoleInvestor}, nil).Once()
	s.userRepo.On("FindUserByID", ctx, "investor-2").Return(&domain.User{UserID: "investor-2", Role: domain.RoleInvestor}, nil).Once()

	deal, err := s.service.CreateDeal(ctx, investor, dto.CreateDealRequest{EntrepreneurID: "investor-2"})

	s.Nil(deal)
	s.ErrorIs(err, apperrors.ErrValidation)
}

// Scenario 1: entrepreneur counters, investor accepts.
func (s *DealServiceTestSuite) TestNegotiateThenAccept() {
	ctx := context.Background()
	s.activeParties()
	pending := seedDeal(domain.DealStatusPending, "", 1)
	amount := decimal.NewFromInt(150000)
	preMoney := decimal.NewFromInt(850000)

	s.dealRepo.On("FindDealByID", ctx, "deal-1").Return(pending, nil).Once()
	s.dealRepo.On("UpdateDeal", ctx, mock.MatchedBy(func(d domain.Deal) bool {
		return d.Status == domain.DealStatusNegotiating && d.LastActionBy == domain.PartyEntrepreneur && d.Version == 2
	}), int64(1), mock.MatchedBy(func(entries []domain.NegotiationEntry) bool {
		return len(entries) == 1 && entries[0].Actor == domain.PartyEntrepreneur
	})).Return(nil).Once()

	negotiated, err := s.service.NegotiateDeal(ctx, entrepreneur, "deal-1", dto.NegotiateDealRequest{
		Version:           1,
		InvestmentAmount:  &amount,
		PreMoneyValuation: &preMoney,
	})
	s.Require().NoError(err)
	s.True(negotiated.Terms.PostMoneyValuation.Equal(decimal.NewFromInt(1000000)))
	s.True(negotiated.Terms.EquityOffered.Equal(decimal.NewFromInt(10)))

	s.dealRepo.On("FindDealByID", ctx, "deal-1").Return(negotiated, nil).Once()
	s.dealRepo.On("UpdateDeal", ctx, mock.MatchedBy(func(d domain.Deal) bool {
		return d.Status == domain.DealStatusAccepted && d.ClosedAt != nil
	}), int64(2), mock.MatchedBy(func(entries []domain.NegotiationEntry) bool {
		return len(entries) == 0
	})).Return(nil).Once()

	accepted, err := s.service.AcceptDeal(ctx, investor, "deal-1", dto.DealDecisionRequest{Version: 2})
	s.Require().NoError(err)
	s.Equal(domain.DealStatusAccepted, accepted.Status)
	s.Equal(int64(3), accepted.Version)
	s.dealRepo.AssertExpectations(s.T())
	s.notifier.AssertCalled(s.T(), "Push", investorID, portssvc.ChatEventNotification, mock.Anything)
	s.notifier.AssertCalled(s.T(), "Push", entrepreneurID, portssvc.ChatEventNotification, mock.Anything)
}

// Scenario 2: the party that made the last proposal cannot respond to it.
func (s *DealServiceTestSuite) TestAcceptOwnCounterOffer_NotYourTurn() {
	ctx := context.Background()
	s.activeParties()
	s.dealRepo.On("FindDealByID", ctx, "deal-1").Return(seedDeal(domain.DealStatusNegotiating, domain.PartyEntrepreneur, 2), nil).Once()

	deal, err := s.service.AcceptDeal(ctx, entrepreneur, "deal-1", dto.DealDecisionRequest{Version: 2})

	s.Nil(deal)
	s.ErrorIs(err, apperrors.ErrNotYourTurn)
	s.dealRepo.AssertNotCalled(s.T(), "UpdateDeal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *DealServiceTestSuite) TestTerminalDeal() {
	ctx := context.Background()
	s.activeParties()
	s.dealRepo.On("FindDealByID", ctx, "deal-1").Return(seedDeal(domain.DealStatusRejected, domain.PartyInvestor, 3), nil).Once()

	deal, err := s.service.NegotiateDeal(ctx, entrepreneur, "deal-1", dto.NegotiateDealRequest{Version: 3})

	s.Nil(deal)
	s.ErrorIs(err, apperrors.ErrTerminalState)
}

func (s *DealServiceTestSuite) TestStaleVersion_Conflict() {
	ctx := context.Background()
	s.activeParties()
	s.dealRepo.On("FindDealByID", ctx, "deal-1").Return(seedDeal(domain.DealStatusNegotiating, domain.PartyInvestor, 4), nil).Once()

	deal, err := s.service.RejectDeal(ctx, entrepreneur, "deal-1", dto.DealDecisionRequest{Version: 3})

	s.Nil(deal)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.dealRepo.AssertNotCalled(s.T(), "UpdateDeal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *DealServiceTestSuite) TestConcurrentWriterLoses() {
	ctx := context.Background()
	s.activeParties()
	s.dealRepo.On("FindDealByID", ctx, "deal-1").Return(seedDeal(domain.DealStatusPending, "", 1), nil).Once()
	s.dealRepo.On("UpdateDeal", ctx, mock.Anything, int64(1), mock.Anything).Return(apperrors.ErrConflict).Once()

	deal, err := s.service.RejectDeal(ctx, entrepreneur, "deal-1", dto.DealDecisionRequest{Version: 1})

	s.Nil(deal)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.publisher.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
}

func (s *DealServiceTestSuite) TestSuspendedPartyCannotAct() {
	ctx := context.Background()
	s.userRepo.On("FindUserByID", ctx, entrepreneurID).Return(&domain.User{UserID: entrepreneurID, Role: domain.RoleEntrepreneur, Suspended: true}, nil)

	actions := map[string]func() (*domain.Deal, error){
		"negotiate": func() (*domain.Deal, error) {
			return s.service.NegotiateDeal(ctx, entrepreneur, "deal-1", dto.NegotiateDealRequest{Version: 1})
		},
		"accept": func() (*domain.Deal, error) {
			return s.service.AcceptDeal(ctx, entrepreneur, "deal-1", dto.DealDecisionRequest{Version: 1})
		},
		"reject": func() (*domain.Deal, error) {
			return s.service.RejectDeal(ctx, entrepreneur, "deal-1", dto.DealDecisionRequest{Version: 1})
		},
	}
	for name, act := range actions {
		s.dealRepo.On("FindDealByID", ctx, "deal-1").Return(seedDeal(domain.DealStatusPending, "", 1), nil).Once()

		deal, err := act()

		s.Nil(deal, name)
		s.ErrorIs(err, apperrors.ErrForbidden, name)
	}
	s.dealRepo.AssertNotCalled(s.T(), "UpdateDeal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.publisher.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
}

func (s *DealServiceTestSuite) TestNonPartyForbidden() {
	ctx := context.Background()
	s.dealRepo.On("FindDealByID", ctx, "deal-1").Return(seedDeal(domain.DealStatusPending, "", 1), nil).Once()

	outsider := domain.Principal{UserID: "someone-else", Role: domain.RoleInvestor}
	deal, err := s.service.AcceptDeal(ctx, outsider, "deal-1", dto.DealDecisionRequest{Version: 1})

	s.Nil(deal)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *DealServiceTestSuite) TestGetProposalView() {
	ctx := context.Background()
	s.dealRepo.On("FindDealByID", ctx, "deal-1").Return(seedDeal(domain.DealStatusNegotiating, domain.PartyInvestor, 2), nil).Times(3)

	view, err := s.service.GetProposalView(ctx, investor, "deal-1")
	s.Require().NoError(err)
	s.True(view.ReadOnly)

	view, err = s.service.GetProposalView(ctx, entrepreneur, "deal-1")
	s.Require().NoError(err)
	s.True(view.YourTurn)
	s.False(view.ReadOnly)

	view, err = s.service.GetProposalView(ctx, admin, "deal-1")
	s.Require().NoError(err)
	s.True(view.ReadOnly)
}

func (s *DealServiceTestSuite) TestListDeals_ScopesToCaller() {
	ctx := context.Background()
	token := "next"
	status := domain.DealStatusAccepted
	s.dealRepo.On("ListDeals", ctx, portsrepo.DealFilter{UserID: investorID, Status: &status}, 20, (*string)(nil)).
		Return([]domain.Deal{*seedDeal(domain.DealStatusAccepted, domain.PartyInvestor, 2)}, &token, nil).Once()
	s.dealRepo.On("ListDeals", ctx, portsrepo.DealFilter{}, 20, (*string)(nil)).Return(nil, nil, nil).Once()

	deals, next, err := s.service.ListDeals(ctx, investor, dto.ListDealsParams{Limit: 20, Status: "Accepted"})
	s.Require().NoError(err)
	s.Len(deals, 1)
	s.Equal(&token, next)

	deals, next, err = s.service.ListDeals(ctx, admin, dto.ListDealsParams{Limit: 20})
	s.Require().NoError(err)
	s.NotNil(deals)
	s.Empty(deals)
	s.Nil(next)
}

func TestDealService(t *testing.T) {
	suite.Run(t, new(DealServiceTestSuite))
}
