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
	"github.com/SscSPs/trustbridge_backend/internal/platform/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultPaymentCurrency = "usd"

// paymentService implements the PaymentSvcFacade interface
type paymentService struct {
	BaseService
	txnRepo   portsrepo.TransactionRepositoryFacade
	dealRepo  portsrepo.DealReader
	userRepo  portsrepo.UserReader
	processor gateways.PaymentProcessor
	fees      domain.FeeSchedule
	currency  string
}

// PaymentServiceOption is a functional option for configuring the payment service
type PaymentServiceOption func(*paymentService)

// WithFeeSchedule sets the processor fee and platform commission rates
func WithFeeSchedule(fees domain.FeeSchedule) PaymentServiceOption {
	return func(s *paymentService) {
		s.fees = fees
	}
}

// WithPaymentCurrency sets the settlement currency
func WithPaymentCurrency(currency string) PaymentServiceOption {
	return func(s *paymentService) {
		s.currency = currency
	}
}

// WithPaymentEventPublisher adds the domain event publisher
func WithPaymentEventPublisher(p gateways.EventPublisher) PaymentServiceOption {
	return func(s *paymentService) {
		s.Events = p
	}
}

// WithPaymentNotifier adds live notifications to the deal parties
func WithPaymentNotifier(n portssvc.ChatNotifier) PaymentServiceOption {
	return func(s *paymentService) {
		s.Notifier = n
	}
}

// NewPaymentService creates a new payment service with the provided options
func NewPaymentService(
	txnRepo portsrepo.TransactionRepositoryFacade,
	dealRepo portsrepo.DealReader,
	userRepo portsrepo.UserReader,
	processor gateways.PaymentProcessor,
	options ...PaymentServiceOption,
) portssvc.PaymentSvcFacade {
	svc := &paymentService{
		txnRepo:   txnRepo,
		dealRepo:  dealRepo,
		userRepo:  userRepo,
		processor: processor,
		fees: domain.FeeSchedule{
			ProcessorPercent:  decimal.RequireFromString("2.9"),
			ProcessorFixed:    decimal.RequireFromString("0.30"),
			CommissionPercent: decimal.NewFromInt(5),
		},
		currency: defaultPaymentCurrency,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure paymentService implements the PaymentSvcFacade interface
var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// requireVerified loads the caller and enforces the identity gate of the funding flow.
func (s *paymentService) requireVerified(ctx context.Context, userID string) error {
	user, err := s.RequireActiveUser(ctx, s.userRepo, userID)
	if err != nil {
		return err
	}
	if !user.KYCVerified {
		return fmt.Errorf("%w: identity verification is required before funding", apperrors.ErrKYCRequired)
	}
	return nil
}

func (s *paymentService) CreatePaymentIntent(ctx context.Context, caller domain.Principal, req dto.CreatePaymentIntentRequest) (*dto.PaymentIntentResponse, error) {
	deal, err := s.dealRepo.FindDealByID(ctx, req.DealID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load deal for payment", slog.String("deal_id", req.DealID))
		}
		return nil, err
	}
	role, ok := deal.RoleOf(caller.UserID)
	if !ok {
		return nil, fmt.Errorf("%w: user is not a party to deal %s", apperrors.ErrForbidden, req.DealID)
	}
	if err := s.requireVerified(ctx, caller.UserID); err != nil {
		return nil, err
	}

	existing, err := s.txnRepo.ListTransactionsByDeal(ctx, deal.DealID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list deal transactions", slog.String("deal_id", deal.DealID))
		return nil, err
	}
	additional, err := domain.FundingRound(*deal, existing)
	if err != nil {
		metrics.PaymentEvents.WithLabelValues("intent", "refused").Inc()
		return nil, err
	}
	// The entrepreneur may only request further rounds; the first one is opened by the investor.
	if !additional && role != domain.PartyInvestor {
		return nil, fmt.Errorf("%w: the first payment must be opened by the investor", apperrors.ErrForbidden)
	}
	if err := domain.ValidatePaymentAmount(*deal, req.Amount); err != nil {
		metrics.PaymentEvents.WithLabelValues("intent", "refused").Inc()
		return nil, err
	}

	fee, commission := s.fees.Apply(req.Amount)
	txnID := uuid.NewString()

	intent, err := s.processor.CreateIntent(ctx, gateways.IntentRequest{
		TransactionID: txnID,
		DealID:        deal.DealID,
		InvestorID:    deal.InvestorID,
		Amount:        req.Amount,
		Currency:      s.currency,
	})
	if err != nil {
		metrics.PaymentEvents.WithLabelValues("intent", "processor_error").Inc()
		s.LogError(ctx, err, "Payment processor refused intent", slog.String("deal_id", deal.DealID))
		return nil, fmt.Errorf("%w: could not create payment intent: %v", apperrors.ErrPayment, err)
	}

	txn := domain.Transaction{
		TransactionID:          txnID,
		DealID:                 deal.DealID,
		InvestorID:             deal.InvestorID,
		EntrepreneurID:         deal.EntrepreneurID,
		Amount:                 req.Amount,
		Currency:               s.currency,
		StripeFee:              fee,
		PlatformCommission:     commission,
		NetAmount:              domain.NetAmount(req.Amount, fee, commission),
		PaymentIntentID:        intent.IntentID,
		Status:                 domain.TransactionPending,
		IsAdditionalInvestment: additional,
		CreatedAt:              time.Now().UTC(),
	}
	if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
		if !errors.Is(err, apperrors.ErrPaymentInProgress) {
			s.LogError(ctx, err, "Failed to record pending transaction",
				slog.String("deal_id", deal.DealID),
				slog.String("payment_intent_id", intent.IntentID))
		}
		return nil, err
	}

	metrics.PaymentEvents.WithLabelValues("intent", "created").Inc()
	s.LogInfo(ctx, "Payment intent created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("deal_id", deal.DealID),
		slog.Bool("additional", additional))

	return &dto.PaymentIntentResponse{
		TransactionID:          txn.TransactionID,
		PaymentIntentID:        intent.IntentID,
		ClientSecret:           intent.ClientSecret,
		Amount:                 txn.Amount,
		Currency:               txn.Currency,
		StripeFee:              txn.StripeFee,
		PlatformCommission:     txn.PlatformCommission,
		NetAmount:              txn.NetAmount,
		IsAdditionalInvestment: txn.IsAdditionalInvestment,
	}, nil
}

func (s *paymentService) ConfirmPayment(ctx context.Context, caller domain.Principal, transactionID string, req dto.ConfirmPaymentRequest) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load transaction", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	if txn.InvestorID != caller.UserID {
		return nil, fmt.Errorf("%w: only the investor can confirm payment", apperrors.ErrForbidden)
	}
	if err := s.requireVerified(ctx, caller.UserID); err != nil {
		return nil, err
	}
	if txn.Status != domain.TransactionPending {
		return nil, fmt.Errorf("%w: transaction %s is already %s", apperrors.ErrValidation, transactionID, txn.Status)
	}
	if req.PaymentIntentID != txn.PaymentIntentID {
		return nil, fmt.Errorf("%w: payment intent does not belong to transaction %s", apperrors.ErrValidation, transactionID)
	}

	intent, err := s.processor.ConfirmIntent(ctx, txn.PaymentIntentID)
	if err != nil {
		metrics.PaymentEvents.WithLabelValues("confirm", "processor_error").Inc()
		s.LogError(ctx, err, "Payment confirmation failed", slog.String("payment_intent_id", txn.PaymentIntentID))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPayment, err)
	}
	if intent.Status != gateways.IntentSucceeded {
		metrics.PaymentEvents.WithLabelValues("confirm", "declined").Inc()
		if intent.Status == gateways.IntentFailed {
			s.closeDeclined(ctx, *txn)
		}
		return nil, fmt.Errorf("%w: payment %s", apperrors.ErrPayment, declineReason(intent))
	}

	paid, err := txn.MarkPaid(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.txnRepo.ConfirmTransaction(ctx, paid); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// A concurrent confirm of the same intent already recorded it.
			if current, errLoad := s.txnRepo.FindTransactionByID(ctx, transactionID); errLoad == nil && current.Status != domain.TransactionPending {
				return current, nil
			}
		}
		metrics.PaymentReconciliationGaps.Inc()
		s.LogError(ctx, err, "Payment captured but not recorded",
			slog.String("transaction_id", transactionID),
			slog.String("payment_intent_id", txn.PaymentIntentID),
			slog.String("deal_id", txn.DealID))
		return nil, fmt.Errorf("%w: payment %s was captured but could not be recorded", apperrors.ErrReconciliation, txn.PaymentIntentID)
	}

	metrics.PaymentEvents.WithLabelValues("confirm", "paid").Inc()
	s.LogInfo(ctx, "Payment confirmed",
		slog.String("transaction_id", transactionID),
		slog.String("deal_id", txn.DealID))
	s.PublishEvent(ctx, domain.EventPaymentPaid, txn.DealID, caller.UserID, []string{txn.EntrepreneurID}, map[string]any{
		"transactionID": txn.TransactionID,
		"amount":        txn.Amount.String(),
		"additional":    txn.IsAdditionalInvestment,
	})
	return &paid, nil
}

// closeDeclined moves a declined transaction to failed so the deal can open a
// new funding round. A concurrent confirm that already moved it is left alone.
func (s *paymentService) closeDeclined(ctx context.Context, txn domain.Transaction) {
	failed, err := txn.MarkFailed()
	if err != nil {
		return
	}
	if err := s.txnRepo.FailTransaction(ctx, failed); err != nil && !errors.Is(err, apperrors.ErrConflict) {
		s.LogError(ctx, err, "Failed to close declined transaction",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("payment_intent_id", txn.PaymentIntentID))
		return
	}
	s.LogInfo(ctx, "Declined transaction closed",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("deal_id", txn.DealID))
}

func declineReason(intent *gateways.Intent) string {
	if intent.FailureReason != "" {
		return intent.FailureReason
	}
	return "status " + string(intent.Status)
}

func (s *paymentService) ReleaseFunds(ctx context.Context, caller domain.Principal, transactionID string) (*domain.Transaction, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can release funds", apperrors.ErrForbidden)
	}
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load transaction", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	released, err := txn.Release(caller.UserID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.txnRepo.ReleaseTransaction(ctx, released); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to release funds", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	metrics.PaymentEvents.WithLabelValues("release", "released").Inc()
	s.LogInfo(ctx, "Funds released",
		slog.String("transaction_id", transactionID),
		slog.String("net_amount", released.NetAmount.String()))
	s.PublishEvent(ctx, domain.EventPaymentReleased, released.DealID, caller.UserID, []string{released.InvestorID, released.EntrepreneurID}, map[string]any{
		"transactionID": released.TransactionID,
		"netAmount":     released.NetAmount.String(),
	})
	return &released, nil
}

func (s *paymentService) GetTransaction(ctx context.Context, caller domain.Principal, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && caller.UserID != txn.InvestorID && caller.UserID != txn.EntrepreneurID {
		return nil, fmt.Errorf("%w: user is not a party to transaction %s", apperrors.ErrForbidden, transactionID)
	}
	return txn, nil
}

func (s *paymentService) ListDealTransactions(ctx context.Context, caller domain.Principal, dealID string) ([]domain.Transaction, error) {
	deal, err := s.dealRepo.FindDealByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if _, ok := deal.RoleOf(caller.UserID); !ok && !caller.IsAdmin() {
		return nil, fmt.Errorf("%w: user is not a party to deal %s", apperrors.ErrForbidden, dealID)
	}
	txns, err := s.txnRepo.ListTransactionsByDeal(ctx, dealID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list deal transactions", slog.String("deal_id", dealID))
		return nil, err
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	return txns, nil
}

func (s *paymentService) ListTransactions(ctx context.Context, caller domain.Principal, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error) {
	filter := portsrepo.TransactionFilter{DealID: params.DealID}
	if !caller.IsAdmin() {
		filter.UserID = caller.UserID
	}
	if params.Status != "" {
		status := domain.TransactionStatus(params.Status)
		if !status.IsValid() {
			return nil, nil, fmt.Errorf("%w: unknown transaction status %q", apperrors.ErrValidation, params.Status)
		}
		filter.Status = &status
	}

	txns, nextToken, err := s.txnRepo.ListTransactions(ctx, filter, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.String("user_id", caller.UserID))
		return nil, nil, err
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	return txns, nextToken, nil
}
