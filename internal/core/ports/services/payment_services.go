package services

import (
	"context"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/dto"
)

// PaymentFundingSvc defines the investor side of the funding workflow
type PaymentFundingSvc interface {
	// CreatePaymentIntent opens a pending transaction on an accepted deal.
	CreatePaymentIntent(ctx context.Context, caller domain.Principal, req dto.CreatePaymentIntentRequest) (*dto.PaymentIntentResponse, error)

	// ConfirmPayment confirms the intent with the processor and marks the transaction paid.
	ConfirmPayment(ctx context.Context, caller domain.Principal, transactionID string, req dto.ConfirmPaymentRequest) (*domain.Transaction, error)
}

// PaymentReleaseSvc defines the admin side of the funding workflow
type PaymentReleaseSvc interface {
	// ReleaseFunds settles a paid transaction to the entrepreneur.
	ReleaseFunds(ctx context.Context, caller domain.Principal, transactionID string) (*domain.Transaction, error)
}

// PaymentReaderSvc defines read operations for funding transactions
type PaymentReaderSvc interface {
	GetTransaction(ctx context.Context, caller domain.Principal, transactionID string) (*domain.Transaction, error)

	// ListDealTransactions returns the funding rounds of one deal, oldest first.
	ListDealTransactions(ctx context.Context, caller domain.Principal, dealID string) ([]domain.Transaction, error)

	// ListTransactions lists the caller's transactions, or all transactions for an admin.
	ListTransactions(ctx context.Context, caller domain.Principal, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error)
}

// PaymentSvcFacade combines all payment service interfaces
type PaymentSvcFacade interface {
	PaymentFundingSvc
	PaymentReleaseSvc
	PaymentReaderSvc
}
