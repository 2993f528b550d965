package repositories

import (
	"context"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
)

// DealFilter narrows deal listings. Empty fields do not filter.
type DealFilter struct {
	UserID string             // investor or entrepreneur on the deal
	Status *domain.DealStatus // exact status
}

// DealReader defines read operations for deal data
type DealReader interface {
	// FindDealByID retrieves a deal with its full negotiation history.
	FindDealByID(ctx context.Context, dealID string) (*domain.Deal, error)

	// ListDeals retrieves deals newest first using token-based pagination.
	// History is not loaded for listings.
	ListDeals(ctx context.Context, filter DealFilter, limit int, nextToken *string) ([]domain.Deal, *string, error)
}

// DealWriter defines write operations for deal data
type DealWriter interface {
	// SaveDeal inserts a new deal. An existing active deal for the same pair yields apperrors.ErrDuplicate.
	SaveDeal(ctx context.Context, deal domain.Deal) error

	// UpdateDeal persists a transition. It fails with apperrors.ErrConflict when the stored
	// version is not expectedVersion. newEntries are appended to the history atomically.
	UpdateDeal(ctx context.Context, deal domain.Deal, expectedVersion int64, newEntries []domain.NegotiationEntry) error
}

// DealRepositoryFacade combines all deal-related repository interfaces
type DealRepositoryFacade interface {
	DealReader
	DealWriter
}
