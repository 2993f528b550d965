package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/apperrors"
	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/core/ports/gateways"
	portssvc "github.com/SscSPs/trustbridge_backend/internal/core/ports/services"
	"github.com/SscSPs/trustbridge_backend/internal/core/services"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceTestSuite struct {
	suite.Suite
	txnRepo   *MockTransactionRepository
	dealRepo  *MockDealRepository
	userRepo  *MockUserRepository
	processor *MockPaymentProcessor
	publisher *MockEventPublisher
	service   portssvc.PaymentSvcFacade
	deal      *domain.Deal
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.txnRepo = new(MockTransactionRepository)
	s.dealRepo = new(MockDealRepository)
	s.userRepo = new(MockUserRepository)
	s.processor = new(MockPaymentProcessor)
	s.publisher = new(MockEventPublisher)
	s.service = services.NewPaymentService(s.txnRepo, s.dealRepo, s.userRepo, s.processor,
		services.WithFeeSchedule(domain.FeeSchedule{
			ProcessorPercent:  decimal.RequireFromString("2.9"),
			ProcessorFixed:    decimal.RequireFromString("0.30"),
			CommissionPercent: decimal.NewFromInt(5),
		}),
		services.WithPaymentCurrency("usd"),
		services.WithPaymentEventPublisher(s.publisher))
	s.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	s.deal = seedDeal(domain.DealStatusAccepted, domain.PartyInvestor, 3)
	s.deal.Terms.InvestmentAmount = decimal.NewFromInt(150000)
}

func (s *PaymentServiceTestSuite) verifiedUser(userID string) {
	s.userRepo.On("FindUserByID", mock.Anything, userID).Return(&domain.User{UserID: userID, KYCVerified: true}, nil)
}

func (s *PaymentServiceTestSuite) TestCreateIntent_AmountBelowInvestmentRejectedBeforeProcessor() {
	ctx := context.Background()
	s.dealRepo.On("FindDealByID", ctx, "deal-1").Return(s.deal, nil).Once()
	s.verifiedUser(investorID)
	s.txnRepo.On("ListTransactionsByDeal", ctx, "deal-1").Return([]domain.Transaction{}, nil).Once()

	res, err := s.service.CreatePaymentIntent(ctx, investor, dto.CreatePaymentIntentRequest{
		DealID: "deal-1",
		Amount: decimal.NewFromInt(149999),
	})

	s.Nil(res)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.processor.AssertNotCalled(s.T(), "CreateIntent", mock.Anything, mock.Anything)
	s.txnRepo.AssertNotCalled(s.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestCreateIntent_KYCRequired() {
	ctx := context.Background()
	s.dealRepo.On("FindDealByID", ctx, "deal-1").Return(s.deal, nil).Once()
	s.userRepo.On("FindUserByID", ctx, investorID).Return(&domain.User{UserID: investorID}, nil).Once()

	res, err := s.service.CreatePaymentIntent(ctx, investor, dto.CreatePaymentIntentRequest{DealID: "deal-1", Amount: decimal.NewFromInt(150000)})

	s.Nil(res)
	s.ErrorIs(err, apperrors.ErrKYCRequired)
	s.processor.AssertNotCalled(s.T(), "CreateIntent", mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestCreateIntent_DealNotAccepted() {
	ctx := context.Background()
	s.deal.Status = domain.DealStatusNegotiating
	s.dealRepo.On("FindDealByID", ctx, "deal-1").Return(s.deal, nil).Once()
	s.verifiedUser(investorID)
	s.txnRepo.On("ListTransactionsByDeal", ctx, "deal-1").Return(nil, nil).Once()

	res, err := s.service.CreatePaymentIntent(ctx, investor, dto.CreatePaymentIntentRequest{DealID: "deal-1", Amount: decimal.NewFromInt(150000)})

	s.Nil(res)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.processor.AssertNotCalled(s.T(), "CreateIntent", mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestCreateIntent_EntrepreneurCannotOpenFirstRound() {
	ctx := context.Background()
	s.dealRepo.On("FindDealByID", ctx, "deal-1").Return(s.deal, nil).Once()
	s.verifiedUser(entrepreneurID)
	s.txnRepo.On("ListTransactionsByDeal", ctx, "deal-1").Return([]domain.Transaction{}, nil).Once()

	res, err := s.service.CreatePaymentIntent(ctx, entrepreneur, dto.CreatePaymentIntentRequest{DealID: "deal-1", Amount: decimal.NewFromInt(150000)})

	s.Nil(res)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *PaymentServiceTestSuite) TestCreateIntent_PreviousRoundNotReleased() {
	ctx := context.Background()
	s.dealRepo.On("FindDealByID", ctx, "deal-1").Return(s.deal, nil).Once()
	s.verifiedUser(investorID)
	s.txnRepo.On("ListTransactionsByDeal", ctx, "deal-1").Return([]domain.Transaction{
		{TransactionID: "txn-0", Status: domain.TransactionPaid},
	}, nil).Once()

	res, err := s.service.CreatePaymentIntent(ctx, investor, dto.CreatePaymentIntentRequest{DealID: "deal-1", Amount: decimal.NewFromInt(150000)})

	s.Nil(res)
	s.ErrorIs(err, apperrors.ErrPaymentInProgress)
	s.processor.AssertNotCalled(s.T(), "CreateIntent", mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestConfirm_ProcessorDeclines() {
	ctx := context.Background()
	pending := &domain.Transaction{TransactionID: "txn-1", DealID: "deal-1", InvestorID: investorID, PaymentIntentID: "pi_1", Status: domain.TransactionPending}
	s.txnRepo.On("FindTransactionByID", ctx, "txn-1").Return(pending, nil).Once()
	s.verifiedUser(investorID)
	s.processor.On("ConfirmIntent", ctx, "pi_1").Return(&gateways.Intent{IntentID: "pi_1", Status: gateways.IntentFailed, FailureReason: "card_declined"}, nil).Once()
	s.txnRepo.On("FailTransaction", ctx, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.TransactionID == "txn-1" && t.Status == domain.TransactionFailed
	})).Return(nil).Once()

	txn, err := s.service.ConfirmPayment(ctx, investor, "txn-1", dto.ConfirmPaymentRequest{PaymentIntentID: "pi_1"})

	s.Nil(txn)
	s.ErrorIs(err, apperrors.ErrPayment)
	s.Contains(err.Error(), "card_declined")
	s.txnRepo.AssertNotCalled(s.T(), "ConfirmTransaction", mock.Anything, mock.Anything)
	s.txnRepo.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestConfirm_StillRequiresConfirmationStaysPending() {
	ctx := context.Background()
	pending := &domain.Transaction{TransactionID: "txn-1", DealID: "deal-1", InvestorID: investorID, PaymentIntentID: "pi_1", Status: domain.TransactionPending}
	s.txnRepo.On("FindTransactionByID", ctx, "txn-1").Return(pending, nil).Once()
	s.verifiedUser(investorID)
	s.processor.On("ConfirmIntent", ctx, "pi_1").Return(&gateways.Intent{IntentID: "pi_1", Status: gateways.IntentRequiresConfirmation}, nil).Once()

	_, err := s.service.ConfirmPayment(ctx, investor, "txn-1", dto.ConfirmPaymentRequest{PaymentIntentID: "pi_1"})

	s.ErrorIs(err, apperrors.ErrPayment)
	s.txnRepo.AssertNotCalled(s.T(), "FailTransaction", mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestConfirm_IntentMismatch() {
	ctx := context.Background()
	pending := &domain.Transaction{TransactionID: "txn-1", InvestorID: investorID, PaymentIntentID: "pi_1", Status: domain.TransactionPending}
	s.txnRepo.On("FindTransactionByID", ctx, "txn-1").Return(pending, nil).Once()
	s.verifiedUser(investorID)

	txn, err := s.service.ConfirmPayment(ctx, investor, "txn-1", dto.ConfirmPaymentRequest{PaymentIntentID: "pi_other"})

	s.Nil(txn)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.processor.AssertNotCalled(s.T(), "ConfirmIntent", mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestConfirm_ReconciliationGap() {
	ctx := context.Background()
	pending := &domain.Transaction{TransactionID: "txn-1", DealID: "deal-1", InvestorID: investorID, PaymentIntentID: "pi_1", Status: domain.TransactionPending}
	s.txnRepo.On("FindTransactionByID", ctx, "txn-1").Return(pending, nil).Once()
	s.verifiedUser(investorID)
	s.processor.On("ConfirmIntent", ctx, "pi_1").Return(&gateways.Intent{IntentID: "pi_1", Status: gateways.IntentSucceeded}, nil).Once()
	s.txnRepo.On("ConfirmTransaction", ctx, mock.Anything).Return(assert.AnError).Once()

	txn, err := s.service.ConfirmPayment(ctx, investor, "txn-1", dto.ConfirmPaymentRequest{PaymentIntentID: "pi_1"})

	s.Nil(txn)
	s.ErrorIs(err, apperrors.ErrReconciliation)
	s.Contains(err.Error(), "pi_1")
	s.publisher.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestConfirm_ConcurrentConfirmAlreadyRecorded() {
	ctx := context.Background()
	pending := &domain.Transaction{TransactionID: "txn-1", DealID: "deal-1", InvestorID: investorID, PaymentIntentID: "pi_1", Status: domain.TransactionPending}
	paidAt := time.Now()
	paid := *pending
	paid.Status = domain.TransactionPaid
	paid.PaidAt = &paidAt

	s.txnRepo.On("FindTransactionByID", ctx, "txn-1").Return(pending, nil).Once()
	s.verifiedUser(investorID)
	s.processor.On("ConfirmIntent", ctx, "pi_1").Return(&gateways.Intent{IntentID: "pi_1", Status: gateways.IntentSucceeded}, nil).Once()
	s.txnRepo.On("ConfirmTransaction", ctx, mock.Anything).Return(apperrors.ErrConflict).Once()
	s.txnRepo.On("FindTransactionByID", ctx, "txn-1").Return(&paid, nil).Once()

	txn, err := s.service.ConfirmPayment(ctx, investor, "txn-1", dto.ConfirmPaymentRequest{PaymentIntentID: "pi_1"})

	s.Require().NoError(err)
	s.Equal(domain.TransactionPaid, txn.Status)
}

func (s *PaymentServiceTestSuite) TestRelease_AdminOnly() {
	txn, err := s.service.ReleaseFunds(context.Background(), investor, "txn-1")

	s.Nil(txn)
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.txnRepo.AssertNotCalled(s.T(), "FindTransactionByID", mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestRelease_RequiresPaid() {
	ctx := context.Background()
	s.txnRepo.On("FindTransactionByID", ctx, "txn-1").Return(&domain.Transaction{TransactionID: "txn-1", Status: domain.TransactionPending}, nil).Once()

	txn, err := s.service.ReleaseFunds(ctx, admin, "txn-1")

	s.Nil(txn)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.txnRepo.AssertNotCalled(s.T(), "ReleaseTransaction", mock.Anything, mock.Anything)
}

// Scenario 3: pay, release, then invest more on the same accepted deal.
func (s *PaymentServiceTestSuite) TestFundingLifecycle() {
	ctx := context.Background()
	amount := decimal.NewFromInt(150000)
	s.verifiedUser(investorID)
	s.verifiedUser(entrepreneurID)
	s.dealRepo.On("FindDealByID", ctx, "deal-1").Return(s.deal, nil)

	// 1. investor opens the first round
	var first domain.Transaction
	s.txnRepo.On("ListTransactionsByDeal", ctx, "deal-1").Return([]domain.Transaction{}, nil).Once()
	s.processor.On("CreateIntent", ctx, mock.MatchedBy(func(r gateways.IntentRequest) bool {
		return r.Amount.Equal(amount) && r.DealID == "deal-1" && r.InvestorID == investorID
	})).Return(&gateways.Intent{IntentID: "pi_1", ClientSecret: "pi_1_secret", Amount: amount, Currency: "usd", Status: gateways.IntentRequiresConfirmation}, nil).Once()
	s.txnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Status == domain.TransactionPending && !t.IsAdditionalInvestment
	})).Run(func(args mock.Arguments) {
		first = args.Get(1).(domain.Transaction)
	}).Return(nil).Once()

	intent, err := s.service.CreatePaymentIntent(ctx, investor, dto.CreatePaymentIntentRequest{DealID: "deal-1", Amount: amount})
	s.Require().NoError(err)
	s.Equal("pi_1", intent.PaymentIntentID)
	s.Equal("pi_1_secret", intent.ClientSecret)
	s.True(intent.StripeFee.Equal(decimal.RequireFromString("4350.30")))
	s.True(intent.PlatformCommission.Equal(decimal.NewFromInt(7500)))
	s.True(intent.NetAmount.Equal(decimal.RequireFromString("138149.70")))

	// 2. investor confirms, transaction becomes paid
	s.txnRepo.On("FindTransactionByID", ctx, first.TransactionID).Return(&first, nil).Once()
	s.processor.On("ConfirmIntent", ctx, "pi_1").Return(&gateways.Intent{IntentID: "pi_1", Status: gateways.IntentSucceeded}, nil).Once()
	var paid domain.Transaction
	s.txnRepo.On("ConfirmTransaction", ctx, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Status == domain.TransactionPaid && t.PaidAt != nil
	})).Run(func(args mock.Arguments) {
		paid = args.Get(1).(domain.Transaction)
	}).Return(nil).Once()

	confirmed, err := s.service.ConfirmPayment(ctx, investor, first.TransactionID, dto.ConfirmPaymentRequest{PaymentIntentID: "pi_1"})
	s.Require().NoError(err)
	s.Equal(domain.TransactionPaid, confirmed.Status)

	// 3. admin releases
	s.txnRepo.On("FindTransactionByID", ctx, first.TransactionID).Return(&paid, nil).Once()
	var released domain.Transaction
	s.txnRepo.On("ReleaseTransaction", ctx, mock.Anything).Run(func(args mock.Arguments) {
		released = args.Get(1).(domain.Transaction)
	}).Return(nil).Once()

	out, err := s.service.ReleaseFunds(ctx, admin, first.TransactionID)
	s.Require().NoError(err)
	s.Equal(domain.TransactionFundsReleased, out.Status)
	s.Equal("admin-1", *out.ReleasedBy)
	s.NotNil(out.AdminActionDate)
	s.True(out.NetAmount.Equal(out.Amount.Sub(out.StripeFee).Sub(out.PlatformCommission)))
	s.True(out.NetAmount.LessThanOrEqual(amount))

	// 4. entrepreneur opens an additional round; the deal stays accepted
	s.txnRepo.On("ListTransactionsByDeal", ctx, "deal-1").Return([]domain.Transaction{released}, nil).Once()
	s.processor.On("CreateIntent", ctx, mock.Anything).Return(&gateways.Intent{IntentID: "pi_2", ClientSecret: "pi_2_secret", Status: gateways.IntentRequiresConfirmation}, nil).Once()
	s.txnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.IsAdditionalInvestment && t.InvestorID == investorID && t.EntrepreneurID == entrepreneurID
	})).Return(nil).Once()

	more, err := s.service.CreatePaymentIntent(ctx, entrepreneur, dto.CreatePaymentIntentRequest{DealID: "deal-1", Amount: amount})
	s.Require().NoError(err)
	s.True(more.IsAdditionalInvestment)
	s.Equal(domain.DealStatusAccepted, s.deal.Status)
	s.dealRepo.AssertNotCalled(s.T(), "UpdateDeal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	s.txnRepo.AssertExpectations(s.T())
	s.processor.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestGetTransaction_NonPartyForbidden() {
	ctx := context.Background()
	s.txnRepo.On("FindTransactionByID", ctx, "txn-1").Return(&domain.Transaction{TransactionID: "txn-1", InvestorID: investorID, EntrepreneurID: entrepreneurID}, nil).Twice()

	_, err := s.service.GetTransaction(ctx, domain.Principal{UserID: "stranger", Role: domain.RoleInvestor}, "txn-1")
	s.ErrorIs(err, apperrors.ErrForbidden)

	txn, err := s.service.GetTransaction(ctx, admin, "txn-1")
	s.Require().NoError(err)
	s.Equal("txn-1", txn.TransactionID)
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
