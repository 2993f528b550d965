package repositories

import (
	"context"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
)

// TransactionFilter narrows funding transaction listings. Empty fields do not filter.
type TransactionFilter struct {
	UserID string                    // investor or entrepreneur
	DealID string                    // single deal
	Status *domain.TransactionStatus // exact status
}

// TransactionReader defines read operations for funding transactions
type TransactionReader interface {
	// FindTransactionByID retrieves one funding transaction.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByDeal returns every transaction of a deal, oldest first.
	ListTransactionsByDeal(ctx context.Context, dealID string) ([]domain.Transaction, error)

	// ListTransactions retrieves transactions newest first using token-based pagination.
	ListTransactions(ctx context.Context, filter TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// TransactionWriter defines write operations for funding transactions
type TransactionWriter interface {
	// SaveTransaction inserts a pending transaction. A deal with a pending or
	// paid transaction yields apperrors.ErrPaymentInProgress.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// ConfirmTransaction stores a pending -> paid transition in one database
	// transaction with the deal's payment status, which only the first round sets.
	ConfirmTransaction(ctx context.Context, txn domain.Transaction) error

	// FailTransaction stores a pending -> failed transition. A transaction that
	// already left pending yields apperrors.ErrConflict.
	FailTransaction(ctx context.Context, txn domain.Transaction) error

	// ReleaseTransaction stores a paid -> funds_released transition and the
	// deal's payment status in one database transaction.
	ReleaseTransaction(ctx context.Context, txn domain.Transaction) error
}

// TransactionRepositoryFacade combines all funding transaction repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
